package models

import (
	"errors"
	"fmt"
	"strings"
)

// SourceTag identifies which source produced a UnifiedPlant.
type SourceTag string

const (
	SourcePrimary   SourceTag = "primary"
	SourceSecondary SourceTag = "secondary"
	SourceLocal     SourceTag = "local"
)

const idSeparator = "-"

var ErrInvalidID = errors.New("invalid plant id")

func (t SourceTag) Valid() bool {
	switch t {
	case SourcePrimary, SourceSecondary, SourceLocal:
		return true
	}
	return false
}

// MakeID builds the composite id "<tag>-<originalID>".
func MakeID(tag SourceTag, originalID string) string {
	return string(tag) + idSeparator + originalID
}

// ParseID splits a composite id at the first separator. The original id may
// itself contain separators ("local-ficus-1" -> local, "ficus-1").
func ParseID(id string) (SourceTag, string, error) {
	tag, originalID, ok := strings.Cut(id, idSeparator)
	if !ok || originalID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	st := SourceTag(tag)
	if !st.Valid() {
		return "", "", fmt.Errorf("%w: unknown source %q", ErrInvalidID, tag)
	}
	return st, originalID, nil
}
