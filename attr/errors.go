// Common attrparty error definitions.
package attr

import "errors"

var (
	// ErrAttributeRegistered reports a duplicate attribute type
	// registration.
	ErrAttributeRegistered = errors.New("attrparty: attribute type already registered")

	// ErrModifierRegistered reports a duplicate modifier type
	// registration.
	ErrModifierRegistered = errors.New("attrparty: modifier type already registered")

	// ErrUnknownAttribute reports a modifier registered against an
	// attribute type the engine has never seen. Without a recompute
	// step for the target, the modifier's dirty marks would never be
	// consumed, so this is surfaced at setup time.
	ErrUnknownAttribute = errors.New("attrparty: target attribute type not registered")
)
