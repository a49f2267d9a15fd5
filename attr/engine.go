package attr

import (
	"fmt"
	"log/slog"
	"slices"
)

// Engine owns the registered attribute and modifier types and drives
// the two phases of an update pass: change detection, which turns the
// store's change feed into dirty marks, and recompute, which consumes
// the marks by resetting each dirty attribute and replaying its
// attached modifiers in priority order.
type Engine struct {
	store Store
	log   Logger

	warnOnAmbiguity bool

	attrs     map[TypeKey]*attrBinding
	mods      map[TypeKey]*modBinding
	attrOrder []TypeKey
	modOrder  []TypeKey
}

type attrBinding struct {
	key  TypeKey
	name string
}

type modBinding struct {
	key    TypeKey
	name   string
	target TypeKey
	bind   func(instance any) (boundModifier, bool)
}

// boundModifier is one attached instance seen through the modifier
// contract, ready to sort and apply.
type boundModifier struct {
	typeKey          TypeKey
	name             string
	priority         Priority
	orderIndependent bool
	apply            func(Value)
}

// ModifierBinder is implemented by stores that maintain their own
// index from modifier type to target attribute type, so that
// Store.Modifiers can answer the heterogeneous query. The engine
// informs such stores of every modifier registration.
type ModifierBinder interface {
	BindModifier(modType, attrType TypeKey)
}

type EngineOption func(*Engine)

// WithLogger replaces the diagnostics logger.
func WithLogger(log Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithAmbiguityWarnings toggles the diagnostic for tied modifier
// orderings. Off or on, recompute order stays deterministic through
// the type-key tie-break.
func WithAmbiguityWarnings(enabled bool) EngineOption {
	return func(e *Engine) { e.warnOnAmbiguity = enabled }
}

// NewEngine creates an engine over the given host store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:           store,
		log:             NewDefaultLogger(slog.LevelWarn),
		warnOnAmbiguity: true,
		attrs:           map[TypeKey]*attrBinding{},
		mods:            map[TypeKey]*modBinding{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterAttribute installs the recompute step for attribute type A.
// It must be called before any modifier targeting A is registered.
func RegisterAttribute[A Value](e *Engine) error {
	key := KeyOf[A]()
	if _, dup := e.attrs[key]; dup {
		return fmt.Errorf("%w: %s", ErrAttributeRegistered, nameOf[A]())
	}
	e.attrs[key] = &attrBinding{key: key, name: nameOf[A]()}
	e.attrOrder = append(e.attrOrder, key)
	return nil
}

// RegisterModifier installs the change-detection step for modifier
// type M and makes attached M instances discoverable by A's recompute
// step. Registering M before A is a configuration error: its dirty
// marks would never be consumed.
func RegisterModifier[M ModifierOf[A], A Value](e *Engine) error {
	target := KeyOf[A]()
	if _, ok := e.attrs[target]; !ok {
		return fmt.Errorf("%w: %s targets %s", ErrUnknownAttribute, nameOf[M](), nameOf[A]())
	}
	key := KeyOf[M]()
	if _, dup := e.mods[key]; dup {
		return fmt.Errorf("%w: %s", ErrModifierRegistered, nameOf[M]())
	}

	name := nameOf[M]()
	e.mods[key] = &modBinding{
		key:    key,
		name:   name,
		target: target,
		bind: func(instance any) (boundModifier, bool) {
			m, ok := instance.(M)
			if !ok {
				return boundModifier{}, false
			}
			orderIndependent := false
			if oi, ok := any(m).(OrderIndependent); ok {
				orderIndependent = oi.OrderIndependent()
			}
			return boundModifier{
				typeKey:          key,
				name:             name,
				priority:         m.Priority(),
				orderIndependent: orderIndependent,
				apply:            func(v Value) { m.Apply(v.(A)) },
			}, true
		},
	}
	e.modOrder = append(e.modOrder, key)

	if binder, ok := e.store.(ModifierBinder); ok {
		binder.BindModifier(key, target)
	}
	return nil
}

// Tick runs one full update pass: change detection for every
// registered modifier type, then recompute for every registered
// attribute type. Any modifier change observed in this pass is
// reflected in its attribute's value by the time Tick returns.
func (e *Engine) Tick() {
	for _, key := range e.modOrder {
		e.detectChanges(e.mods[key])
	}
	for _, key := range e.attrOrder {
		e.recompute(e.attrs[key])
	}
}

// detectChanges drains mb's change feed and marks the target
// attribute dirty on every affected object. Objects that vanished
// from the store between passes are skipped: there is nothing left to
// recompute.
func (e *Engine) detectChanges(mb *modBinding) {
	for _, obj := range e.store.Changed(mb.key) {
		e.log.Debug("modifier changed", "modifier", mb.name, "object", obj)
		e.store.MarkDirty(obj, mb.target)
	}
	for _, obj := range e.store.Removed(mb.key) {
		if !e.store.Alive(obj) {
			continue
		}
		e.log.Debug("modifier removed", "modifier", mb.name, "object", obj)
		e.store.MarkDirty(obj, mb.target)
	}
}

// recompute refreshes every object dirty for ab's attribute type and
// clears the marks. However many change events fired for one object
// during the pass, they coalesced into a single mark and produce a
// single refresh here.
func (e *Engine) recompute(ab *attrBinding) {
	for _, obj := range e.store.Dirty(ab.key) {
		e.refresh(ab, obj)
		e.store.ClearDirty(obj, ab.key)
	}
}

func (e *Engine) refresh(ab *attrBinding, obj ObjectID) {
	value, ok := e.store.Attribute(obj, ab.key)
	if !ok {
		// Dangling mark: the object or its attribute slot is gone.
		return
	}

	attached := e.store.Modifiers(obj, ab.key)
	bound := make([]boundModifier, 0, len(attached))
	for _, am := range attached {
		mb, ok := e.mods[am.Type]
		if !ok || mb.target != ab.key {
			e.log.Warn("skipping unregistered modifier instance",
				"attribute", ab.name, "object", obj)
			continue
		}
		bm, ok := mb.bind(am.Instance)
		if !ok {
			e.log.Warn("skipping modifier instance of unexpected concrete type",
				"modifier", mb.name, "object", obj)
			continue
		}
		bound = append(bound, bm)
	}

	// Instances of one type with equal priority keep their attachment
	// order; ties across types break on the stable type key.
	slices.SortStableFunc(bound, func(a, b boundModifier) int {
		return comparePriorities(a.priority, b.priority, a.typeKey, b.typeKey)
	})
	if e.warnOnAmbiguity {
		e.warnAmbiguities(bound)
	}

	value.Reset()
	for _, bm := range bound {
		bm.apply(value)
	}

	// An attribute may itself be registered as a modifier of another
	// attribute on the same object. Its refresh counts as a change of
	// that modifier, so the downstream attribute goes dirty. With
	// upstream attributes registered first this converges within the
	// same tick, otherwise on the next one.
	if mb, ok := e.mods[ab.key]; ok && mb.target != ab.key {
		e.store.MarkDirty(obj, mb.target)
	}
}

// warnAmbiguities reports adjacent modifiers of different types that
// resolved to the same priority index without either declaring itself
// order independent. The tie is resolved deterministically either
// way; the warning only flags that the relative order was never
// chosen on purpose.
func (e *Engine) warnAmbiguities(sorted []boundModifier) {
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if a.priority.Index() != b.priority.Index() || a.typeKey == b.typeKey {
			continue
		}
		if a.orderIndependent || b.orderIndependent {
			continue
		}
		e.log.Warn("ambiguity between the order of two modifiers",
			"a", a.name, "b", b.name, "priority", a.priority.Index())
	}
}
