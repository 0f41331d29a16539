package core

import (
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Coded errors
// -----------------------------------------------------------------------------

// Error is the coded failure shape crossing process boundaries. Code is a
// stable machine-readable identifier, Message is human-oriented, Details
// carry structured context. The wrapped cause never leaves the process in
// serialized form but stays available for local diagnostics.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func NewError(err error, code string, details map[string]any) *Error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		cause:   err,
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) String() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return e.Error()
	}
	return string(bytes)
}
