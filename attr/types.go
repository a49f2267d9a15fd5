package attr

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// TypeKey is the stable identity of a registered attribute or modifier
// type. It is a hash of the type's import path and name, so it stays
// the same across runs and builds, which makes it usable as the
// deterministic tie-break when two modifiers share a priority index.
type TypeKey uint64

// KeyOf returns the TypeKey for T.
func KeyOf[T any]() TypeKey {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return TypeKey(xxhash.Sum64String(t.String()))
}

// nameOf returns the human-readable name for T, used in diagnostics
// and registration errors.
func nameOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// ObjectID identifies one object in the host store. The engine never
// creates or destroys objects; it only reads IDs handed to it by the
// store's change feed and dirty-mark iteration.
type ObjectID uuid.UUID

// NewObjectID mints a fresh object identifier.
func NewObjectID() ObjectID {
	return ObjectID(uuid.New())
}

func (id ObjectID) String() string {
	return uuid.UUID(id).String()
}
