package eln

import (
	"fmt"
	"strings"
	"time"
)

// EntryKind tags the scalar type of a single datum.
type EntryKind string

const (
	EntryText     EntryKind = "text"
	EntryNumber   EntryKind = "number"
	EntryFile     EntryKind = "file"
	EntryDate     EntryKind = "date"
	EntryTime     EntryKind = "time"
	EntryRichText EntryKind = "richtext"
	EntryBool     EntryKind = "bool"
)

var entryKinds = []EntryKind{EntryText, EntryNumber, EntryFile, EntryDate, EntryTime, EntryRichText, EntryBool}

// ParseEntryKind validates an entry tag.
func ParseEntryKind(tag string) (EntryKind, error) {
	kind := EntryKind(strings.TrimSpace(tag))
	for _, k := range entryKinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: entry type %q (want one of %s)", ErrInvalidKind, tag, joinKinds(entryKinds))
}

// ModuleKind tags one of the platform's predefined widgets.
type ModuleKind string

const (
	ModuleForm     ModuleKind = "form"
	ModuleTable    ModuleKind = "table"
	ModuleRichText ModuleKind = "richtext"
	ModuleImages   ModuleKind = "images"
	// ModuleChart is accepted by the platform but cannot be built by this
	// package; NewModule rejects it with ErrUnknownKind.
	ModuleChart ModuleKind = "echarts"
)

var moduleKinds = []ModuleKind{ModuleForm, ModuleTable, ModuleImages, ModuleRichText, ModuleChart}

// ParseModuleKind validates a module tag. ModuleChart is recognized.
func ParseModuleKind(tag string) (ModuleKind, error) {
	kind := ModuleKind(strings.TrimSpace(tag))
	for _, k := range moduleKinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: module type %q (want one of %s)", ErrInvalidKind, tag, joinKinds(moduleKinds))
}

// Constructible reports whether NewModule can build the kind.
func (k ModuleKind) Constructible() bool {
	_, ok := moduleConstructors[k]
	return ok
}

func joinKinds[K ~string](kinds []K) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// Localized labels the platform shows for auto-named items and columns.
const (
	labelText       = "文本项"
	labelBool       = "布尔值项"
	labelNumber     = "数字项"
	labelTextColumn = "文本列"
	labelNumberCol  = "数字列"
	labelBoolColumn = "布尔值列"
)

// ValueLabel returns the localized label for the runtime type of value, or
// "" when the type has none.
func ValueLabel(value any) string {
	switch v := value.(type) {
	case string:
		return labelText
	case bool:
		return labelBool
	case []string:
		return labelTextColumn
	case []bool:
		return labelBoolColumn
	case []any:
		if len(v) == 0 {
			return labelTextColumn
		}
		switch columnKind(v) {
		case columnText:
			return labelTextColumn
		case columnNumber:
			return labelNumberCol
		case columnBool:
			return labelBoolColumn
		}
		return ""
	}
	if isNumber(value) {
		return labelNumber
	}
	if isNumberSlice(value) {
		return labelNumberCol
	}
	return ""
}

const timestampLayout = "2006-01-02 15:04:05.000000"

// now is replaced in tests.
var now = time.Now

func timestamp() string {
	return now().Format(timestampLayout)
}
