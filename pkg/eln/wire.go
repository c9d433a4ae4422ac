package eln

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// statusCode is the application status embedded in every API reply. The
// platform sends numbers, except for the "refresh" sentinel.
type statusCode struct {
	code    int
	refresh bool
}

const refreshSentinel = "refresh"

func (c *statusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == refreshSentinel {
			*c = statusCode{refresh: true}
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("errcode %q is not a status", s)
		}
		*c = statusCode{code: n}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("errcode %s is not a status", data)
	}
	*c = statusCode{code: n}
	return nil
}

// err maps the status to a sentinel. A nil status means the reply carried
// no errcode and counts as success.
func (c *statusCode) err() error {
	if c == nil {
		return nil
	}
	if c.refresh {
		return fmt.Errorf("%w: access token expired", ErrAuthentication)
	}
	switch c.code {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%w: access token rejected", ErrAuthentication)
	case 2:
		return ErrDataFormat
	case 3:
		return ErrServer
	}
	return fmt.Errorf("%w: unexpected errcode %d", ErrServer, c.code)
}

type reply struct {
	Errcode *statusCode `json:"errcode"`
}

type tokenReply struct {
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

type notebookListReply struct {
	Errcode *statusCode `json:"errcode"`
	My      []Notebook  `json:"my"`
}

// Notebook is one entry of the notebook listing.
type Notebook struct {
	ShowText string `json:"showtext"`
}

// ID is an identifier the platform sends either as a string or a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id %s is neither string nor number", data)
		}
		*id = ID(n.String())
	}
	return nil
}

// DatasetEnvelope wraps one imported record.
type DatasetEnvelope struct {
	Title   string `json:"title" yaml:"title"`
	UID     string `json:"uid" yaml:"uid"`
	Data    any    `json:"data" yaml:"data"`
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// ImportBody is the request body of the import endpoint.
type ImportBody struct {
	ELN      string            `json:"eln" yaml:"eln"`
	Template string            `json:"template" yaml:"template"`
	Dataset  []DatasetEnvelope `json:"dataset" yaml:"dataset"`
	Quote    any               `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// ExportBody is the request body of the export endpoint.
type ExportBody struct {
	ELN       []string `json:"eln" yaml:"eln"`
	DateStart string   `json:"date_start,omitempty" yaml:"date_start,omitempty"`
	DateEnd   string   `json:"date_end,omitempty" yaml:"date_end,omitempty"`
	Keywords  []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	UIDs      []string `json:"uids,omitempty" yaml:"uids,omitempty"`
}

// UpdateBody is the request body of the update endpoint.
type UpdateBody struct {
	ELN       string         `json:"eln" yaml:"eln"`
	UID       string         `json:"uid" yaml:"uid"`
	AddModule []ModuleRecord `json:"addModule,omitempty" yaml:"addModule,omitempty"`
	Add       []EntryRecord  `json:"add,omitempty" yaml:"add,omitempty"`
}

type exportReply struct {
	Errcode *statusCode `json:"errcode"`
	Dataset []Dataset   `json:"dataset"`
}

// Dataset is one exported ELN record.
type Dataset struct {
	ID    ID           `json:"id" yaml:"id"`
	UID   ID           `json:"uid" yaml:"uid"`
	Title string       `json:"title" yaml:"title"`
	Comm  any          `json:"comm,omitempty" yaml:"comm,omitempty"`
	Data  []ModuleData `json:"data" yaml:"data"`
}

// ModuleData is one module of an exported record.
type ModuleData struct {
	UID  ID          `json:"uid" yaml:"uid"`
	Name string      `json:"name" yaml:"name"`
	Type string      `json:"type" yaml:"type"`
	Data []EntryData `json:"data" yaml:"data"`
}

// EntryData is one entry of an exported module.
type EntryData struct {
	UID  ID     `json:"uid" yaml:"uid"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data" yaml:"data"`
}
