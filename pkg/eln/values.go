package eln

import (
	"encoding/json"
	"fmt"
)

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

func isNumberSlice(v any) bool {
	switch v.(type) {
	case []int, []int32, []int64, []uint, []uint32, []uint64, []float32, []float64:
		return true
	}
	return false
}

type columnType int

const (
	columnInvalid columnType = iota
	columnText
	columnNumber
	columnBool
)

// columnKind reports the element type shared by every item of values.
// Mixed slices are invalid; an empty slice has no element type.
func columnKind(values []any) columnType {
	if len(values) == 0 {
		return columnInvalid
	}
	kind := scalarColumnType(values[0])
	for _, v := range values[1:] {
		if scalarColumnType(v) != kind {
			return columnInvalid
		}
	}
	return kind
}

func scalarColumnType(v any) columnType {
	switch v.(type) {
	case string:
		return columnText
	case bool:
		return columnBool
	}
	if isNumber(v) {
		return columnNumber
	}
	return columnInvalid
}

// isColumn reports whether v is a homogeneous array of text, numbers or bools.
func isColumn(v any) bool {
	switch c := v.(type) {
	case []string, []bool:
		return true
	case []any:
		return len(c) == 0 || columnKind(c) != columnInvalid
	}
	return isNumberSlice(v)
}

// isScalar reports whether v can sit in a form field.
func isScalar(v any) bool {
	return scalarColumnType(v) != columnInvalid
}

func stringMap(v any) (map[string]string, error) {
	switch m := v.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q is %T, want string", ErrUnsupportedEntryType, k, val)
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T, want string mapping", ErrUnsupportedEntryType, v)
}
