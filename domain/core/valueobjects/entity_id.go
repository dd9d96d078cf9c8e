package valueobjects

import (
	"errors"

	"github.com/google/uuid"

	pkgerrors "forum-api/pkg/errors"
)

// EntityID is a value object representing a unique document identifier
// Value objects are immutable and have no identity beyond their value
type EntityID struct {
	value string
}

// NewEntityID creates a new random EntityID
func NewEntityID() EntityID {
	return EntityID{value: uuid.New().String()}
}

// ParseEntityID validates an id received from a caller. kind names the entity
// in the error message, e.g. "topic" -> `Invalid topic ID: "x"`.
func ParseEntityID(kind, id string) (EntityID, error) {
	if id == "" || !isValidUUID(id) {
		return EntityID{}, pkgerrors.NewInvalidReferenceError(kind, id)
	}
	return EntityID{value: id}, nil
}

// String returns the string representation of the EntityID
func (id EntityID) String() string {
	return id.value
}

// Equals checks if two EntityIDs are equal
func (id EntityID) Equals(other EntityID) bool {
	return id.value == other.value
}

// IsZero checks if the EntityID is the zero value
func (id EntityID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *EntityID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("EntityID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
