package glass

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// ID identifies one record instance within a record type.
//
// The canonical rendering is 32 lowercase hex digits without hyphens; that is
// the form used in bag keys and ordering index members.
type ID uuid.UUID

// NilID is the all-zero identifier meaning “no such entry”.
var NilID ID

func NewID() ID {
	return ID(uuid.New())
}

// ParseID accepts the unhyphenated form as well as anything uuid.Parse
// understands (hyphenated, braced, urn:uuid:).
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, &IdentifierError{Raw: s, Err: err}
	}
	return ID(u), nil
}

func MustParseID(s string) ID {
	return must(ParseID(s))
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

func (id ID) IsNil() bool {
	return id == NilID
}

func (id ID) MarshalText() ([]byte, error) {
	var buf [32]byte
	hex.Encode(buf[:], id[:])
	return buf[:], nil
}

func (id *ID) UnmarshalText(data []byte) error {
	v, err := ParseID(string(data))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id ID) MarshalBinary() ([]byte, error) {
	return id[:], nil
}

func (id *ID) UnmarshalBinary(data []byte) error {
	if len(data) != len(id) {
		return &IdentifierError{Raw: hex.EncodeToString(data), Err: errInvalidLength}
	}
	copy(id[:], data)
	return nil
}
