package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

// decodeFile reads path ("-" for in) as JSON when it ends in .json and as
// YAML otherwise. YAML also accepts JSON documents.
func decodeFile(in io.Reader, path string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &v)
	} else {
		err = yaml.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

// readRecords returns the record payloads in path. A single object is one
// record.
func readRecords(in io.Reader, path string) ([]any, error) {
	v, err := decodeFile(in, path)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	case map[string]any:
		return []any{val}, nil
	default:
		return nil, fmt.Errorf("%s: want an array of records, got %T", path, v)
	}
}

// readRows returns the rows in path and whether the file held a single
// object rather than an array.
func readRows(in io.Reader, path string) ([]eln.Row, bool, error) {
	v, err := decodeFile(in, path)
	if err != nil {
		return nil, false, err
	}
	switch val := v.(type) {
	case map[string]any:
		return []eln.Row{val}, true, nil
	case []any:
		if len(val) == 0 {
			return nil, false, fmt.Errorf("%w: %s holds no rows", eln.ErrEmptyInput, path)
		}
		rows := make([]eln.Row, len(val))
		for i, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false, fmt.Errorf("%s: row %d is %T, want an object", path, i, item)
			}
			rows[i] = m
		}
		return rows, false, nil
	case nil:
		return nil, false, fmt.Errorf("%w: %s is empty", eln.ErrEmptyInput, path)
	default:
		return nil, false, fmt.Errorf("%s: want an object or an array of objects, got %T", path, v)
	}
}

// parseTypes turns col=kind pairs into a column kind map.
func parseTypes(pairs []string) (map[string]string, error) {
	types := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		col, kind, ok := strings.Cut(pair, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("--type %q: want col=kind", pair)
		}
		k, err := eln.ParseEntryKind(kind)
		if err != nil {
			return nil, fmt.Errorf("--type %q: %w", pair, err)
		}
		types[col] = string(k)
	}
	return types, nil
}

// parseQuote decodes the --quote JSON payload. Empty means no quote.
func parseQuote(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("--quote: %w", err)
	}
	return v, nil
}
