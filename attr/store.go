package attr

// AttachedModifier is one modifier instance reported by the store,
// paired with the concrete type it was attached as. The engine needs
// the type key both for dispatch and for the priority tie-break.
type AttachedModifier struct {
	Type     TypeKey
	Instance any
}

// Store is the boundary with the host object/value store. The engine
// assumes nothing about storage layout, only these operations. All of
// them must be safe for use from a single Tick goroutine; the store is
// free to be internally concurrent beyond that.
type Store interface {
	// Attribute returns mutable access to obj's attribute slot of the
	// given type, if present.
	Attribute(obj ObjectID, attrType TypeKey) (Value, bool)

	// Modifiers returns every currently attached modifier instance on
	// obj whose registered type targets attrType. Order is
	// deterministic for a given attachment history.
	Modifiers(obj ObjectID, attrType TypeKey) []AttachedModifier

	// Changed drains and returns the set of objects on which an
	// instance of modType was attached or mutated since the previous
	// drain. Each object appears at most once.
	Changed(modType TypeKey) []ObjectID

	// Removed drains and returns the set of objects from which an
	// instance of modType was detached since the previous drain.
	// Notifications must be deliverable even if the object itself has
	// since been destroyed.
	Removed(modType TypeKey) []ObjectID

	// Alive reports whether obj still exists in the store.
	Alive(obj ObjectID) bool

	// MarkDirty records that obj's attribute of the given type needs
	// recomputation. At most one mark exists per (object, attribute
	// type); marking an already-dirty pair is a no-op.
	MarkDirty(obj ObjectID, attrType TypeKey)

	// ClearDirty removes the mark for (obj, attrType) if present.
	ClearDirty(obj ObjectID, attrType TypeKey)

	// Dirty returns the objects currently marked dirty for attrType.
	Dirty(attrType TypeKey) []ObjectID
}
