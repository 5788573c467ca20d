package logpush

import (
	"encoding/base64"
	"encoding/json"

	"github.com/davidthor/logpushctl/pkg/errors"
)

// Cursor marks where the next page of a scan resumes: the object key being
// read and the number of raw lines already consumed within it.
//
// A cursor is opaque to callers and valid only for a scan with the same
// scope. The engine does not verify that the filters match the originating
// scan; resuming with different filters yields a well-defined position whose
// results reflect the new filters.
type Cursor struct {
	Key  string `json:"key"`
	Line int    `json:"line"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses a token produced by Encode. A malformed token fails
// with InvalidCursor.
func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errors.InvalidCursor("not base64url")
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, errors.InvalidCursor("not a cursor payload")
	}
	if c.Key == "" || c.Line < 0 {
		return Cursor{}, errors.InvalidCursor("missing key or negative line offset")
	}
	return c, nil
}
