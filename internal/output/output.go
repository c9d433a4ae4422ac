// Package output renders notebook listings and exported records for the
// eln command as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatTable, FormatJSON, FormatYAML}
}

// ParseFormat normalizes name. An empty name means table.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", name)
	}
}

const maxCellWidth = 48

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func render(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Notebooks writes the notebook names visible to the session.
func Notebooks(w io.Writer, f Format, names []string) error {
	if f != FormatTable {
		return Value(w, f, names)
	}
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{strconv.Itoa(i + 1), name})
	}
	return render(w, []string{"#", "NOTEBOOK"}, rows)
}

// Datasets writes exported records. The table form has one row per entry.
func Datasets(w io.Writer, f Format, datasets []eln.Dataset) error {
	if f != FormatTable {
		return Value(w, f, datasets)
	}
	var rows [][]string
	for _, ds := range datasets {
		if len(ds.Data) == 0 {
			rows = append(rows, []string{ds.Title, string(ds.UID), "-", "-", "-", "-"})
			continue
		}
		for _, m := range ds.Data {
			if len(m.Data) == 0 {
				rows = append(rows, []string{ds.Title, string(ds.UID), m.Name, "-", m.Type, "-"})
				continue
			}
			for _, e := range m.Data {
				rows = append(rows, []string{
					ds.Title,
					string(ds.UID),
					m.Name,
					e.Name,
					e.Type,
					Truncate(FormatValue(e.Data), maxCellWidth),
				})
			}
		}
	}
	return render(w, []string{"TITLE", "UID", "MODULE", "ENTRY", "TYPE", "VALUE"}, rows)
}

// Records writes records flattened to title -> module maps.
func Records(w io.Writer, f Format, records map[string][]map[string]any) error {
	if f != FormatTable {
		return Value(w, f, records)
	}
	titles := make([]string, 0, len(records))
	for title := range records {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	var rows [][]string
	for _, title := range titles {
		for i, module := range records[title] {
			for _, field := range sortedKeys(module) {
				rows = append(rows, []string{
					title,
					strconv.Itoa(i),
					field,
					Truncate(FormatValue(module[field]), maxCellWidth),
				})
			}
		}
	}
	return render(w, []string{"TITLE", "MODULE", "FIELD", "VALUE"}, rows)
}

// Value writes v as JSON or YAML. The table format falls back to JSON.
func Value(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// FormatValue renders an entry value on a single line.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return strings.ReplaceAll(val, "\n", " ")
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case json.Number:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			parts = append(parts, k+"="+FormatValue(val[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}

// Truncate shortens s to max runes with a trailing ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
