// Package transcript encodes conversation turns into the blob stored per user.
//
// A blob is a sequence of records. Each record is a single JSON object
// followed by Delimiter. JSON string escaping keeps the delimiter out of
// record bodies, so any content survives a round trip.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Delimiter terminates every record in a blob.
const Delimiter = "\n"

var (
	ErrMalformedRecord = errors.New("malformed transcript record")
	ErrInvalidRole     = errors.New("invalid turn role")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// record mirrors Turn with a pointer so a missing "content" key is detected.
type record struct {
	Role    Role    `json:"role"`
	Content *string `json:"content"`
}

// EncodeTurn returns the record for t, delimiter included.
func EncodeTurn(t Turn) (string, error) {
	if !t.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, t.Role)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the value with '\n', which is Delimiter.
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("encode turn: %w", err)
	}
	return buf.String(), nil
}

func Encode(turns []Turn) (string, error) {
	var b strings.Builder
	for i, t := range turns {
		rec, err := EncodeTurn(t)
		if err != nil {
			return "", fmt.Errorf("turn %d: %w", i, err)
		}
		b.WriteString(rec)
	}
	return b.String(), nil
}

// Decode parses a blob back into turns. Any record that is not a
// role+content object, and any unterminated tail, yields ErrMalformedRecord.
func Decode(blob string) ([]Turn, error) {
	if blob == "" {
		return nil, nil
	}

	parts := strings.Split(blob, Delimiter)
	if tail := parts[len(parts)-1]; tail != "" {
		return nil, fmt.Errorf("%w: unterminated record %d", ErrMalformedRecord, len(parts)-1)
	}
	parts = parts[:len(parts)-1]

	turns := make([]Turn, 0, len(parts))
	for i, p := range parts {
		t, err := decodeRecord(p)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedRecord, i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func decodeRecord(s string) (Turn, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()

	var rec record
	if err := dec.Decode(&rec); err != nil {
		return Turn{}, err
	}
	if dec.More() {
		return Turn{}, errors.New("trailing data")
	}
	if !rec.Role.Valid() {
		return Turn{}, fmt.Errorf("role %q", rec.Role)
	}
	if rec.Content == nil {
		return Turn{}, errors.New("missing content")
	}
	return Turn{Role: rec.Role, Content: *rec.Content}, nil
}

// Count reports how many records blob holds without decoding them.
func Count(blob, delimiter string) int {
	if delimiter == "" {
		return 0
	}
	return strings.Count(blob, delimiter)
}
