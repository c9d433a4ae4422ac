package eln

import (
	"fmt"
	"sort"
	"strings"
)

// Cell is one row of a Table.
type Cell struct {
	Name string
	Data any
	Type string
}

// Table is a column-oriented view of the entries of one exported module,
// indexed by entry name. Names may repeat; Lookup returns the first match.
type Table struct {
	Index []string
	Data  []any
	Types []string
}

// NewTable builds a Table from the entries of an exported module, keeping
// their order.
func NewTable(entries []EntryData) Table {
	t := Table{
		Index: make([]string, len(entries)),
		Data:  make([]any, len(entries)),
		Types: make([]string, len(entries)),
	}
	for i, e := range entries {
		t.Index[i] = e.Name
		t.Data[i] = e.Data
		t.Types[i] = e.Type
	}
	return t
}

// Len returns the number of entries.
func (t Table) Len() int { return len(t.Index) }

// Row returns the i-th entry. It panics when i is out of range.
func (t Table) Row(i int) Cell {
	return Cell{Name: t.Index[i], Data: t.Data[i], Type: t.Types[i]}
}

// Lookup returns the first entry called name.
func (t Table) Lookup(name string) (Cell, bool) {
	for i, n := range t.Index {
		if n == name {
			return t.Row(i), true
		}
	}
	return Cell{}, false
}

// Map returns entry name to data. Later duplicates overwrite earlier ones.
func (t Table) Map() map[string]any {
	out := make(map[string]any, t.Len())
	for i, n := range t.Index {
		out[n] = t.Data[i]
	}
	return out
}

// RecordFunc turns the table of one exported module into a caller record.
type RecordFunc[T any] func(Table) (T, error)

// TableMap is a RecordFunc returning the entries as a name to data map.
func TableMap(t Table) (map[string]any, error) {
	return t.Map(), nil
}

// Row is one caller record handed to a TemplateFunc.
type Row map[string]any

// TemplateEntry describes one entry to file under an updated module.
type TemplateEntry struct {
	Name string
	Type string
	Data any
}

// TemplateFunc turns a caller row into the entries of one module.
type TemplateFunc func(Row) ([]TemplateEntry, error)

// ColumnsTemplate returns a TemplateFunc that maps every column of a row to an
// entry named after the column. types maps column names to entry kinds;
// unmapped columns are sent as text. Entries are ordered by column name.
func ColumnsTemplate(types map[string]string) TemplateFunc {
	return func(row Row) ([]TemplateEntry, error) {
		names := make([]string, 0, len(row))
		for name := range row {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make([]TemplateEntry, 0, len(names))
		for _, name := range names {
			kind := strings.TrimSpace(types[name])
			if kind == "" {
				kind = string(EntryText)
			}
			if _, err := ParseEntryKind(kind); err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			out = append(out, TemplateEntry{Name: name, Type: kind, Data: row[name]})
		}
		return out, nil
	}
}
