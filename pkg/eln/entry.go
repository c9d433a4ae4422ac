package eln

// Entry is one scalar datum filed under a module. Entries are values and are
// not modified after construction.
type Entry struct {
	module string
	kind   EntryKind
	name   string
	value  any
}

// EntryRecord is the wire form of an Entry.
type EntryRecord struct {
	Module string `json:"module" yaml:"module"`
	Type   string `json:"type" yaml:"type"`
	Name   string `json:"name" yaml:"name"`
	Data   any    `json:"data" yaml:"data"`
}

// NewEntry builds an entry of the given kind. An empty name is replaced with
// the kind and the current timestamp.
func NewEntry(moduleName, kind string, value any, name string) (Entry, error) {
	k, err := ParseEntryKind(kind)
	if err != nil {
		return Entry{}, err
	}
	return newEntry(moduleName, k, value, name), nil
}

func newEntry(moduleName string, kind EntryKind, value any, name string) Entry {
	if name == "" {
		name = string(kind) + "_" + timestamp()
	}
	return Entry{module: moduleName, kind: kind, name: name, value: value}
}

// NewTextEntry builds a text entry.
func NewTextEntry(moduleName, value, name string) Entry {
	return newEntry(moduleName, EntryText, value, name)
}

// NewNumberEntry builds a number entry.
func NewNumberEntry(moduleName string, value float64, name string) Entry {
	return newEntry(moduleName, EntryNumber, value, name)
}

// NewFileEntry builds an entry referencing an uploaded file.
func NewFileEntry(moduleName, ref, name string) Entry {
	return newEntry(moduleName, EntryFile, ref, name)
}

// NewDateEntry builds a date entry. The value is sent as given.
func NewDateEntry(moduleName, date, name string) Entry {
	return newEntry(moduleName, EntryDate, date, name)
}

// NewTimeEntry builds a time entry.
func NewTimeEntry(moduleName, clock, name string) Entry {
	return newEntry(moduleName, EntryTime, clock, name)
}

// NewRichTextEntry builds a rich text entry holding an HTML fragment.
func NewRichTextEntry(moduleName, html, name string) Entry {
	return newEntry(moduleName, EntryRichText, html, name)
}

// NewBoolEntry builds a boolean entry.
func NewBoolEntry(moduleName string, value bool, name string) Entry {
	return newEntry(moduleName, EntryBool, value, name)
}

// Module returns the name of the module the entry is filed under.
func (e Entry) Module() string { return e.module }

// Kind returns the entry's type tag.
func (e Entry) Kind() EntryKind { return e.kind }

// Name returns the entry name, generated when none was given.
func (e Entry) Name() string { return e.name }

// Value returns the datum as passed to the constructor.
func (e Entry) Value() any { return e.value }

// Record returns the wire form of the entry.
func (e Entry) Record() EntryRecord {
	return EntryRecord{
		Module: e.module,
		Type:   string(e.kind),
		Name:   e.name,
		Data:   e.value,
	}
}
