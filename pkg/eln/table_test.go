package eln

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_LookupAndMap(t *testing.T) {
	tbl := NewTable([]EntryData{
		{Name: "a", Type: "text", Data: "x"},
		{Name: "b", Type: "number", Data: 2.0},
		{Name: "a", Type: "text", Data: "y"},
	})
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, Cell{Name: "b", Type: "number", Data: 2.0}, tbl.Row(1))

	cell, ok := tbl.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "x", cell.Data)
	_, ok = tbl.Lookup("missing")
	assert.False(t, ok)

	m, err := TableMap(tbl)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "y", "b": 2.0}, m)
}

func TestColumnsTemplate(t *testing.T) {
	fn := ColumnsTemplate(map[string]string{"n": "number", "ok": "bool"})
	entries, err := fn(Row{"ok": true, "n": 1.5, "label": "x"})
	require.NoError(t, err)
	assert.Equal(t, []TemplateEntry{
		{Name: "label", Type: "text", Data: "x"},
		{Name: "n", Type: "number", Data: 1.5},
		{Name: "ok", Type: "bool", Data: true},
	}, entries)

	_, err = ColumnsTemplate(map[string]string{"x": "blob"})(Row{"x": 1})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestDecodeDatasets_DuplicateTitlesOverwrite(t *testing.T) {
	var datasets []Dataset
	require.NoError(t, json.Unmarshal([]byte(`[
		{"title":"r","data":[{"name":"m1","data":[{"name":"a","type":"text","data":"1"}]}]},
		{"title":"r","data":[{"name":"m2","data":[{"name":"a","type":"text","data":"2"}]}]}
	]`), &datasets))

	got, err := DecodeDatasets(datasets, TableMap)
	require.NoError(t, err)
	assert.Equal(t, map[string][]map[string]any{"r": {{"a": "2"}}}, got)
}
