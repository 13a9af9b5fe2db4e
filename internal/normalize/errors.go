package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidJSON = errors.New("payload is not valid JSON")
	ErrNotObject   = errors.New("payload is not a JSON object")
)

// MalformedRecordError reports a payload that could not be mapped.
type MalformedRecordError struct {
	Index int
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// FieldCoercionError reports a numeric field holding a non-numeric value.
type FieldCoercionError struct {
	Index int
	Field string
	Value string
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("record %d: field %s: cannot coerce %s to a number", e.Index, e.Field, e.Value)
}
