package core

import "github.com/google/uuid"

// NewUUIDv7 returns a time-ordered id for entities and events.
func NewUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsValidEntityID reports whether s looks like an id issued by NewUUIDv7: the
// canonical hyphenated form of an RFC 4122 version 7 UUID.
func IsValidEntityID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 7 && id.Variant() == uuid.RFC4122
}
