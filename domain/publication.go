package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Value is a scalar JSON field kept as its display text.
// Strings are stored unquoted; numbers and booleans keep their literal form.
type Value string

// UnmarshalJSON accepts any JSON scalar and rejects objects and arrays.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty field", ErrMalformedPublication)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPublication, err)
		}
		*v = Value(s)
	case '{':
		return fmt.Errorf("%w: field is an object", ErrMalformedPublication)
	case '[':
		return fmt.Errorf("%w: field is an array", ErrMalformedPublication)
	case 'n':
		*v = ""
	default:
		*v = Value(data)
	}
	return nil
}

func (v Value) String() string {
	return string(v)
}

// Publication is one feed item. The timestamp is rendered as received.
type Publication struct {
	Author Value `json:"author"`
	Text   Value `json:"text"`
	At     Value `json:"at"`
}

// Cells returns the row cells in display order: author, text, at.
func (p Publication) Cells() []string {
	return []string{p.Author.String(), p.Text.String(), p.At.String()}
}

// Snapshot is the feed as returned by the server, newest first.
type Snapshot []Publication

// Chronological returns a reversed copy of the snapshot, oldest first.
func (s Snapshot) Chronological() []Publication {
	out := make([]Publication, len(s))
	for i, p := range s {
		out[len(s)-1-i] = p
	}
	return out
}

// DecodePublication parses a single JSON publication object.
func DecodePublication(data []byte) (Publication, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Publication{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedPublication)
	}

	var p Publication
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Publication{}, wrapDecodeErr(err)
	}
	return p, nil
}

// DecodeSnapshot parses a JSON array of publications. A JSON null is an empty snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wrapDecodeErr(err)
	}

	snap := make(Snapshot, 0, len(raw))
	for i, item := range raw {
		p, err := DecodePublication(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		snap = append(snap, p)
	}
	return snap, nil
}

func wrapDecodeErr(err error) error {
	if errors.Is(err, ErrMalformedPublication) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMalformedPublication, err)
}
