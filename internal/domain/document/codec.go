package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/group"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

// Encode serializes d as the persisted JSON record.
func Encode(d Document) ([]byte, error) {
	data, err := json.Marshal(normalize(d))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted record. Missing collections decode as empty and
// a missing current term defaults to the first one. Records that fail to
// parse or break the document invariants yield an error wrapping
// shared.ErrMalformedDocument.
func Decode(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %w", shared.ErrMalformedDocument, err)
	}
	if d.CurrentTerm == 0 {
		d.CurrentTerm = subject.FirstTerm
	}
	d = normalize(d)
	if err := d.Validate(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", shared.ErrMalformedDocument, err)
	}
	return d, nil
}

// normalize replaces nil collections with empty ones so that they encode as
// [] instead of null.
func normalize(d Document) Document {
	if d.Subjects == nil {
		d.Subjects = []subject.Subject{}
	}
	if d.Calendar == nil {
		d.Calendar = []calendar.Event{}
	}
	if d.StudyGroups == nil {
		d.StudyGroups = []group.Group{}
	}
	if d.StudentsRegistry == nil {
		d.StudentsRegistry = []RegistryEntry{}
	}
	if slices.ContainsFunc(d.StudyGroups, func(g group.Group) bool { return g.Messages == nil }) {
		groups := slices.Clone(d.StudyGroups)
		for i := range groups {
			if groups[i].Messages == nil {
				groups[i].Messages = []group.Message{}
			}
		}
		d.StudyGroups = groups
	}
	return d
}

// RegistryEntry is one opaque studentsRegistry element. It encodes as the
// raw JSON it holds; entries compare equal when their compacted JSON does.
type RegistryEntry json.RawMessage

func (e RegistryEntry) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return e, nil
}

func (e *RegistryEntry) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*e = buf.Bytes()
	return nil
}

// Equal reports whether e and other hold the same JSON, ignoring
// insignificant whitespace.
func (e RegistryEntry) Equal(other RegistryEntry) bool {
	return bytes.Equal(compactJSON(e), compactJSON(other))
}

func compactJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
