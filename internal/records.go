package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server identifier. IRIS sends numeric ids for Cytomine objects and
// may send string ids for sessions, so both JSON forms are accepted. An ID made
// only of digits is written back as a JSON number.
type ID string

// IsZero reports whether the id is unset
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

// Int64 returns the id as an integer, if it is numeric
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	// only canonical integers: "007" stays a string
	if n, ok := id.Int64(); ok && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or a string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Session is the cached IRIS session of the authenticated user
type Session struct {
	ID             ID       `json:"id,omitempty"`
	CurrentProject *Project `json:"currentProject,omitempty"`

	// Extra holds server fields the client does not model
	Extra map[string]json.RawMessage `json:"-"`
}

// Project is the IRIS project as cached in the session
type Project struct {
	CmID         ID     `json:"cmID,omitempty"`
	Class        string `json:"class,omitempty"`
	CurrentImage *Image `json:"currentImage,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Image is the IRIS image as cached in the current project
type Image struct {
	CmID                  ID  `json:"cmID,omitempty"`
	CurrentCmAnnotationID *ID `json:"currentCmAnnotationID,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// LabelingProgress is the freshly computed labeling state of an image.
// It is never cached.
type LabelingProgress struct {
	LabeledAnnotations  int64 `json:"labeledAnnotations"`
	NumberOfAnnotations int64 `json:"numberOfAnnotations"`
	LabelingProgress    int64 `json:"labelingProgress"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	sessionFields  = []string{"id", "currentProject"}
	projectFields  = []string{"cmID", "class", "currentImage"}
	imageFields    = []string{"cmID", "currentCmAnnotationID"}
	progressFields = []string{"labeledAnnotations", "numberOfAnnotations", "labelingProgress"}
)

func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return marshalWithExtra(plain(s), s.Extra)
}

func (s *Session) UnmarshalJSON(b []byte) error {
	type plain Session
	var p plain
	extra, err := unmarshalWithExtra(b, &p, sessionFields)
	if err != nil {
		return err
	}
	*s = Session(p)
	s.Extra = extra
	return nil
}

func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	return marshalWithExtra(plain(p), p.Extra)
}

func (p *Project) UnmarshalJSON(b []byte) error {
	type plain Project
	var v plain
	extra, err := unmarshalWithExtra(b, &v, projectFields)
	if err != nil {
		return err
	}
	*p = Project(v)
	p.Extra = extra
	return nil
}

func (i Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return marshalWithExtra(plain(i), i.Extra)
}

func (i *Image) UnmarshalJSON(b []byte) error {
	type plain Image
	var v plain
	extra, err := unmarshalWithExtra(b, &v, imageFields)
	if err != nil {
		return err
	}
	*i = Image(v)
	i.Extra = extra
	return nil
}

func (l LabelingProgress) MarshalJSON() ([]byte, error) {
	type plain LabelingProgress
	return marshalWithExtra(plain(l), l.Extra)
}

func (l *LabelingProgress) UnmarshalJSON(b []byte) error {
	type plain LabelingProgress
	var v plain
	extra, err := unmarshalWithExtra(b, &v, progressFields)
	if err != nil {
		return err
	}
	*l = LabelingProgress(v)
	l.Extra = extra
	return nil
}

// marshalWithExtra encodes v and merges the extra fields into the resulting
// object. Modelled fields win over extra fields with the same name.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// unmarshalWithExtra decodes b into v and returns the object members that are
// not listed in known. A known member that v would not encode again (null, or
// empty under omitempty) is returned too, so that the record re-encodes to
// the members it was decoded from.
func unmarshalWithExtra(b []byte, v any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var emitted map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &emitted); err != nil {
		return nil, err
	}
	for _, k := range known {
		if _, ok := emitted[k]; ok {
			delete(fields, k)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
