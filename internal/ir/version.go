package ir

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the schema tag every ScoreIR document must carry.
const SchemaVersion = "score_ir/v1"

// SchemaVersionError reports a schema tag mismatch on load. It is always
// fatal: no best-effort interpretation of unknown schemas.
type SchemaVersionError struct {
	Want string
	Got  string
}

func (e *SchemaVersionError) Error() string {
	return fmt.Sprintf("unsupported schema %q (want %q)", e.Got, e.Want)
}

// CheckSchema validates a document's schema tag. Shared by every package
// that loads versioned documents.
func CheckSchema(want, got string) error {
	if got != want {
		return &SchemaVersionError{Want: want, Got: got}
	}
	return nil
}

// UnmarshalScore decodes a ScoreIR JSON document, enforcing the schema
// tag before returning.
func UnmarshalScore(data []byte) (*ScoreIR, error) {
	var s ScoreIR
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}
	if err := CheckSchema(SchemaVersion, s.Schema); err != nil {
		return nil, err
	}
	return &s, nil
}
