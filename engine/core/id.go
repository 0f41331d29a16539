package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// -----------------------------------------------------------------------------
// ID
// -----------------------------------------------------------------------------

// ID identifies a single workflow execution. KSUIDs sort by creation time,
// which keeps execution listings chronological without a separate timestamp.
type ID string

func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return ID(id.String()), nil
}

func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

func ParseID(raw string) (ID, error) {
	parsed, err := ksuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return ID(parsed.String()), nil
}

func (i ID) String() string {
	return string(i)
}

func (i ID) IsZero() bool {
	return i == ""
}
