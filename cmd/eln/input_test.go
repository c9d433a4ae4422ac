package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

func TestReadRecords_Stdin(t *testing.T) {
	records, err := readRecords(strings.NewReader(`{"a": 1}`), "-")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": 1}}, records)

	_, err = readRecords(strings.NewReader(`"text"`), "-")
	assert.ErrorContains(t, err, "want an array")

	_, err = readRecords(strings.NewReader(`a: [`), "-")
	assert.ErrorContains(t, err, "decode -")
}

func TestReadRows(t *testing.T) {
	rows, single, err := readRows(strings.NewReader("a: x\nb: 2\n"), "-")
	require.NoError(t, err)
	assert.True(t, single)
	assert.Equal(t, []eln.Row{{"a": "x", "b": 2}}, rows)

	rows, single, err = readRows(strings.NewReader(`[{"a":"x"},{"b":"y"}]`), "-")
	require.NoError(t, err)
	assert.False(t, single)
	assert.Len(t, rows, 2)

	_, _, err = readRows(strings.NewReader(`[]`), "-")
	assert.ErrorIs(t, err, eln.ErrEmptyInput)

	_, _, err = readRows(strings.NewReader(`[1]`), "-")
	assert.ErrorContains(t, err, "row 0")
}

func TestParseTypes(t *testing.T) {
	types, err := parseTypes([]string{"temp=number", " ok = bool"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"temp": "number", "ok": "bool"}, types)

	_, err = parseTypes([]string{"temp"})
	assert.ErrorContains(t, err, "want col=kind")

	_, err = parseTypes([]string{"temp=vector"})
	assert.ErrorIs(t, err, eln.ErrInvalidKind)
}

func TestParseQuote(t *testing.T) {
	v, err := parseQuote("  ")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseQuote(`[1, "a"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, "a"}, v)
}

func TestFillUIDs(t *testing.T) {
	n := 0
	gen := func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}
	assert.Equal(t, []string{"a", "gen-1", "gen-2"}, fillUIDs([]string{"a", ""}, 3, gen))
}
