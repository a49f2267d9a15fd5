package attr

import "fmt"

// Priority sequences modifier application for one attribute type.
// Priorities of modifiers targeting different attribute types are
// never compared.
type Priority struct {
	index int32
}

// Zero is the default priority. Most modifiers that don't care about
// ordering relative to each other can share it.
func Zero() Priority {
	return Priority{}
}

// After returns a priority applied strictly after p.
func (p Priority) After() Priority {
	return Priority{index: p.index + 1}
}

// Before returns a priority applied strictly before p.
func (p Priority) Before() Priority {
	return Priority{index: p.index - 1}
}

// Index exposes the raw ordering index.
func (p Priority) Index() int32 {
	return p.index
}

func (p Priority) String() string {
	return fmt.Sprintf("Priority(%d)", p.index)
}

// comparePriorities orders two attached modifiers. Equal indexes fall
// back to the modifiers' type keys so that the result is reproducible
// across runs even when the relative order was never declared.
func comparePriorities(a, b Priority, typeA, typeB TypeKey) int {
	switch {
	case a.index < b.index:
		return -1
	case a.index > b.index:
		return 1
	case typeA < typeB:
		return -1
	case typeA > typeB:
		return 1
	default:
		return 0
	}
}
