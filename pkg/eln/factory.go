package eln

import (
	"fmt"
	"strings"
)

type moduleConstructor func(name string, payload any) (Module, error)

// moduleConstructors lists the module kinds this package can build.
// ModuleChart is recognized by ParseModuleKind but deliberately absent.
var moduleConstructors = map[ModuleKind]moduleConstructor{
	ModuleForm:     newFormFromPayload,
	ModuleTable:    newTableFromPayload,
	ModuleRichText: newRichTextFromPayload,
	ModuleImages:   newImagesFromPayload,
}

type entryConstructor func(moduleName string, value any, name string) Entry

func fixedEntry(kind EntryKind) entryConstructor {
	return func(moduleName string, value any, name string) Entry {
		return newEntry(moduleName, kind, value, name)
	}
}

var entryConstructors = map[EntryKind]entryConstructor{
	EntryText:     fixedEntry(EntryText),
	EntryNumber:   fixedEntry(EntryNumber),
	EntryFile:     fixedEntry(EntryFile),
	EntryDate:     fixedEntry(EntryDate),
	EntryTime:     fixedEntry(EntryTime),
	EntryRichText: fixedEntry(EntryRichText),
	EntryBool:     fixedEntry(EntryBool),
}

// ModuleKinds returns the kinds NewModule accepts, in display order.
func ModuleKinds() []ModuleKind {
	out := make([]ModuleKind, 0, len(moduleConstructors))
	for _, k := range moduleKinds {
		if k.Constructible() {
			out = append(out, k)
		}
	}
	return out
}

// EntryKinds returns the kinds BuildEntry accepts, in display order.
func EntryKinds() []EntryKind {
	return append([]EntryKind(nil), entryKinds...)
}

// NewModule builds the module registered for kind. An empty name is replaced
// with the kind and the current timestamp. payload may be nil or must match
// the container shape of the kind.
func NewModule(kind, name string, payload any) (Module, error) {
	k := ModuleKind(strings.TrimSpace(kind))
	build, ok := moduleConstructors[k]
	if !ok {
		return nil, fmt.Errorf("%w: module type %q (want one of %s)", ErrUnknownKind, kind, joinKinds(ModuleKinds()))
	}
	if name == "" {
		name = string(k) + timestamp()
	}
	return build(name, payload)
}

// BuildEntry builds the entry registered for kind. An empty name is replaced
// with the module name, the kind and the current timestamp.
func BuildEntry(kind, moduleName string, value any, name string) (Entry, error) {
	k := EntryKind(strings.TrimSpace(kind))
	build, ok := entryConstructors[k]
	if !ok {
		return Entry{}, fmt.Errorf("%w: entry type %q (want one of %s)", ErrUnknownKind, kind, joinKinds(entryKinds))
	}
	if name == "" {
		name = moduleName + string(k) + timestamp()
	}
	return build(moduleName, value, name), nil
}

func payloadError(kind ModuleKind, payload any) error {
	return fmt.Errorf("%w: %s payload %T", ErrUnsupportedEntryType, kind, payload)
}

func newFormFromPayload(name string, payload any) (Module, error) {
	m := NewFormModule(name, nil)
	switch fields := payload.(type) {
	case nil:
	case map[string]string:
		m.data = make(map[string]any, len(fields))
		for k, v := range fields {
			if err := m.Add(v, k); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		m.data = make(map[string]any, len(fields))
		for k, v := range fields {
			if err := m.Add(v, k); err != nil {
				return nil, err
			}
		}
	default:
		return nil, payloadError(ModuleForm, payload)
	}
	return m, nil
}

func newTableFromPayload(name string, payload any) (Module, error) {
	m := NewTableModule(name, nil)
	switch columns := payload.(type) {
	case nil:
	case map[string]any:
		m.data = make(map[string]any, len(columns))
		for k, v := range columns {
			if err := m.Add(v, k); err != nil {
				return nil, err
			}
		}
	default:
		return nil, payloadError(ModuleTable, payload)
	}
	return m, nil
}

func newRichTextFromPayload(name string, payload any) (Module, error) {
	if payload == nil {
		return NewRichTextModule(name, nil), nil
	}
	data, err := stringMap(payload)
	if err != nil {
		return nil, fmt.Errorf("richtext module %q: %w", name, err)
	}
	return NewRichTextModule(name, data), nil
}

func newImagesFromPayload(name string, payload any) (Module, error) {
	switch images := payload.(type) {
	case nil:
		return NewImagesModule(name, nil), nil
	case []map[string]string:
		return NewImagesModule(name, images), nil
	case []any:
		m := NewImagesModule(name, make([]map[string]string, 0, len(images)))
		for _, img := range images {
			if err := m.Add(img, ""); err != nil {
				return nil, err
			}
		}
		return m, nil
	}
	return nil, payloadError(ModuleImages, payload)
}
