package attr

// Value is the contract every attribute value must satisfy: restore
// itself to its baseline, independent of whatever modifiers have been
// applied since. Reset must be idempotent — repeated resets with no
// modifier applications in between always produce the same state.
//
// Types with a natural zero value get this almost for free:
//
//	type Health struct{ Current int }
//
//	func (h *Health) Reset() { *h = Health{} }
//
// Types that keep non-derived state (say, a counter that owns its step
// function) reset only the modifier-derived portion.
type Value interface {
	Reset()
}

// ModifierOf is the contract a modifier type implements against its
// target attribute type A. The target is fixed at the type level; one
// modifier type always feeds one attribute type. Priority must stay
// stable for the lifetime of an attached instance.
//
// A modifier may itself be registered as an attribute of a different
// type on the same object; the two roles are independent.
type ModifierOf[A Value] interface {
	Priority() Priority
	Apply(target A)
}

// OrderIndependent may additionally be implemented by a modifier type
// whose result does not depend on its position among equal-priority
// modifiers. When either side of a priority tie reports true, the tie
// is considered intentional and no ambiguity diagnostic is emitted.
type OrderIndependent interface {
	OrderIndependent() bool
}
