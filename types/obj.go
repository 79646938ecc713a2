package types

import "fmt"

// ObjValue represents a MOO object reference. Three reference kinds share
// this type: ordinary numbered objects, anonymous (refcounted) objects, and
// UUID objects (128-bit identifiers, printed as "#~<uuid>").
type ObjValue struct {
	id        ObjID
	anonymous bool   // true for anonymous objects (type code 12)
	uuid      string // non-empty for UUID-kind objects (canonical textual UUID)
}

// Special object constants
const (
	NOTHING      = ObjID(-1)
	AMBIGUOUS    = ObjID(-2)
	FAILED_MATCH = ObjID(-3)
)

// NewObj creates a new object value
func NewObj(id ObjID) ObjValue {
	return ObjValue{id: id, anonymous: false}
}

// NewAnon creates a new anonymous object value
func NewAnon(id ObjID) ObjValue {
	return ObjValue{id: id, anonymous: true}
}

// NewUUIDObj creates a UUID-kind object reference. id is kept as a stable
// stand-in numeric handle for map/list indexing while uuid carries the
// canonical 128-bit textual identifier that round-trips through dumps.
func NewUUIDObj(id ObjID, uuid string) ObjValue {
	return ObjValue{id: id, uuid: uuid}
}

// String returns the MOO string representation
func (o ObjValue) String() string {
	if o.uuid != "" {
		return fmt.Sprintf("#~%s", o.uuid)
	}
	return fmt.Sprintf("#%d", o.id)
}

// Type returns the MOO type (TYPE_ANON for anonymous objects, TYPE_UUID for
// UUID-kind objects).
func (o ObjValue) Type() TypeCode {
	if o.uuid != "" {
		return TYPE_UUID
	}
	if o.anonymous {
		return TYPE_ANON
	}
	return TYPE_OBJ
}

// IsAnonymous returns whether this is an anonymous object
func (o ObjValue) IsAnonymous() bool {
	return o.anonymous
}

// IsUUID returns whether this is a UUID-kind object reference.
func (o ObjValue) IsUUID() bool {
	return o.uuid != ""
}

// UUID returns the canonical textual UUID, or "" if this is not a UUID object.
func (o ObjValue) UUID() string {
	return o.uuid
}

// Truthy returns whether the value is truthy
// In MOO, objects are never truthy (only non-zero ints and non-empty strings are truthy)
func (o ObjValue) Truthy() bool {
	return false
}

// Equal compares two values for equality
func (o ObjValue) Equal(other Value) bool {
	if otherObj, ok := other.(ObjValue); ok {
		if o.uuid != "" || otherObj.uuid != "" {
			return o.uuid == otherObj.uuid
		}
		return o.id == otherObj.id
	}
	return false
}

// ID returns the object ID
func (o ObjValue) ID() ObjID {
	return o.id
}
