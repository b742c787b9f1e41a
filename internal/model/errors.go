package model

import "fmt"

// MalformedInputError reports an input artifact that could not be parsed:
// a JSON document that fails to decode or a workbook that fails to open.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s: %s", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}
