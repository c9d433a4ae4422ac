package eln

import "fmt"

// Module is a named container of entries corresponding to one widget of an
// ELN record.
type Module interface {
	Name() string
	Kind() (ModuleKind, error)
	// Payload returns the module data, or nil when the module carries none.
	Payload() any
	// Add files value under name. An empty name is generated from the value
	// type and the current timestamp. Image modules ignore name.
	Add(value any, name string) error
	Record() (ModuleRecord, error)
}

// ModuleRecord is the wire form of a Module. Data is omitted when nil.
type ModuleRecord struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

var (
	_ Module = (*FormModule)(nil)
	_ Module = (*TableModule)(nil)
	_ Module = (*RichTextModule)(nil)
	_ Module = (*ImagesModule)(nil)
	_ Module = (*GenericModule)(nil)
)

func autoName(value any, name string) string {
	if name != "" {
		return name
	}
	return ValueLabel(value) + timestamp()
}

// FormModule holds text, boolean and number fields keyed by name.
type FormModule struct {
	name string
	data map[string]any
}

// NewFormModule returns a form module. A nil data map is sent without payload.
func NewFormModule(name string, data map[string]any) *FormModule {
	return &FormModule{name: name, data: data}
}

func (m *FormModule) Name() string              { return m.name }
func (m *FormModule) Kind() (ModuleKind, error) { return ModuleForm, nil }

func (m *FormModule) Payload() any {
	if m.data == nil {
		return nil
	}
	return m.data
}

func (m *FormModule) Add(value any, name string) error {
	if !isScalar(value) {
		return fmt.Errorf("%w: form module %q accepts text, bool or number fields, not %T", ErrUnsupportedEntryType, m.name, value)
	}
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[autoName(value, name)] = value
	return nil
}

func (m *FormModule) Record() (ModuleRecord, error) {
	return ModuleRecord{Name: m.name, Type: string(ModuleForm), Data: m.Payload()}, nil
}

// TableModule holds columns keyed by name. Every column is a homogeneous
// array of text, numbers or bools.
type TableModule struct {
	name string
	data map[string]any
}

// NewTableModule returns a table module. Columns in data are not checked;
// use NewModule to validate a decoded payload.
func NewTableModule(name string, data map[string]any) *TableModule {
	return &TableModule{name: name, data: data}
}

func (m *TableModule) Name() string              { return m.name }
func (m *TableModule) Kind() (ModuleKind, error) { return ModuleTable, nil }

func (m *TableModule) Payload() any {
	if m.data == nil {
		return nil
	}
	return m.data
}

func (m *TableModule) Add(value any, name string) error {
	if !isColumn(value) {
		return fmt.Errorf("%w: table module %q accepts text, number or bool columns, not %T", ErrUnsupportedEntryType, m.name, value)
	}
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[autoName(value, name)] = value
	return nil
}

func (m *TableModule) Record() (ModuleRecord, error) {
	return ModuleRecord{Name: m.name, Type: string(ModuleTable), Data: m.Payload()}, nil
}

// RichTextModule holds HTML blobs keyed by name.
type RichTextModule struct {
	name string
	data map[string]string
}

// NewRichTextModule returns a rich text module holding HTML fragments.
func NewRichTextModule(name string, data map[string]string) *RichTextModule {
	return &RichTextModule{name: name, data: data}
}

func (m *RichTextModule) Name() string              { return m.name }
func (m *RichTextModule) Kind() (ModuleKind, error) { return ModuleRichText, nil }

func (m *RichTextModule) Payload() any {
	if m.data == nil {
		return nil
	}
	return m.data
}

func (m *RichTextModule) Add(value any, name string) error {
	text, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: rich text module %q accepts text, not %T", ErrUnsupportedEntryType, m.name, value)
	}
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[autoName(text, name)] = text
	return nil
}

func (m *RichTextModule) Record() (ModuleRecord, error) {
	return ModuleRecord{Name: m.name, Type: string(ModuleRichText), Data: m.Payload()}, nil
}

// ImagesModule holds an ordered list of image descriptors. Images are
// identified by position only.
type ImagesModule struct {
	name string
	data []map[string]string
}

// NewImagesModule returns an images module. Each descriptor is sent as
// given, in order.
func NewImagesModule(name string, data []map[string]string) *ImagesModule {
	return &ImagesModule{name: name, data: data}
}

func (m *ImagesModule) Name() string              { return m.name }
func (m *ImagesModule) Kind() (ModuleKind, error) { return ModuleImages, nil }

func (m *ImagesModule) Payload() any {
	if m.data == nil {
		return nil
	}
	return m.data
}

// Add appends an image descriptor. The name is ignored.
func (m *ImagesModule) Add(value any, _ string) error {
	img, err := stringMap(value)
	if err != nil {
		return fmt.Errorf("images module %q: %w", m.name, err)
	}
	m.data = append(m.data, img)
	return nil
}

func (m *ImagesModule) Record() (ModuleRecord, error) {
	return ModuleRecord{Name: m.name, Type: string(ModuleImages), Data: m.Payload()}, nil
}

// GenericModule is a module whose kind is only checked when read. It stores
// any payload the caller provides: a map for keyed kinds, a list for images.
type GenericModule struct {
	name string
	kind string
	data any
}

// NewGenericModule returns a module of any kind tag. The tag is checked by
// Kind, Add and Record, never here.
func NewGenericModule(name, kind string, data any) *GenericModule {
	return &GenericModule{name: name, kind: kind, data: data}
}

func (m *GenericModule) Name() string { return m.name }

// Kind parses the stored tag and fails with ErrInvalidKind for an unknown one.
func (m *GenericModule) Kind() (ModuleKind, error) {
	return ParseModuleKind(m.kind)
}

func (m *GenericModule) Payload() any { return m.data }

// Add appends value for images and files it under name for the keyed kinds.
// It fails when the payload has the wrong shape for the kind.
func (m *GenericModule) Add(value any, name string) error {
	kind, err := m.Kind()
	if err != nil {
		return err
	}
	if kind == ModuleImages {
		switch list := m.data.(type) {
		case nil:
			m.data = []any{value}
		case []any:
			m.data = append(list, value)
		default:
			return fmt.Errorf("%w: images payload is %T, want list", ErrUnsupportedEntryType, m.data)
		}
		return nil
	}
	switch fields := m.data.(type) {
	case nil:
		m.data = map[string]any{autoName(value, name): value}
	case map[string]any:
		fields[autoName(value, name)] = value
	default:
		return fmt.Errorf("%w: %s payload is %T, want mapping", ErrUnsupportedEntryType, kind, m.data)
	}
	return nil
}

func (m *GenericModule) Record() (ModuleRecord, error) {
	kind, err := m.Kind()
	if err != nil {
		return ModuleRecord{}, err
	}
	return ModuleRecord{Name: m.name, Type: string(kind), Data: m.data}, nil
}
