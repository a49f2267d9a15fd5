// Package world is an in-memory host store for the attr engine. It
// owns objects and the values attached to them, maintains the
// per-modifier-type change feeds the engine's change detection drains
// once per pass, and holds the dirty marks the recompute step
// consumes.
package world

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/delaneyj/attrparty/attr"
)

// slot is one attached value of a single type on one object. version
// bumps on every mutation through Update so change detection can rely
// on "changed since last observation" without diffing values.
type slot struct {
	value   any
	version uint32
}

type object struct {
	mu    sync.Mutex
	slots map[attr.TypeKey][]*slot
}

// feed collects the objects touched for one modifier type since the
// engine last observed it.
type feed struct {
	changed mapset.Set[attr.ObjectID]
	removed mapset.Set[attr.ObjectID]
}

func newFeed() *feed {
	return &feed{
		changed: mapset.NewSet[attr.ObjectID](),
		removed: mapset.NewSet[attr.ObjectID](),
	}
}

// World implements attr.Store plus attr.ModifierBinder.
type World struct {
	objects *xsync.MapOf[attr.ObjectID, *object]
	feeds   *xsync.MapOf[attr.TypeKey, *feed]
	dirty   *xsync.MapOf[attr.TypeKey, mapset.Set[attr.ObjectID]]

	// attrMods maps an attribute type to the modifier types targeting
	// it, in registration order. Written during setup via
	// BindModifier, read-only afterwards.
	bindMu   sync.Mutex
	attrMods map[attr.TypeKey][]attr.TypeKey
}

func New() *World {
	return &World{
		objects:  xsync.NewMapOf[attr.ObjectID, *object](),
		feeds:    xsync.NewMapOf[attr.TypeKey, *feed](),
		dirty:    xsync.NewMapOf[attr.TypeKey, mapset.Set[attr.ObjectID]](),
		attrMods: map[attr.TypeKey][]attr.TypeKey{},
	}
}

// Spawn creates a new empty object and returns its identifier.
func (w *World) Spawn() attr.ObjectID {
	id := attr.NewObjectID()
	w.objects.Store(id, &object{slots: map[attr.TypeKey][]*slot{}})
	return id
}

// Despawn destroys an object and all its attached values. Removal
// notifications are still recorded for every attached type, so change
// detection sees the detachments even though the object is gone.
func (w *World) Despawn(id attr.ObjectID) {
	obj, ok := w.objects.LoadAndDelete(id)
	if !ok {
		return
	}
	obj.mu.Lock()
	defer obj.mu.Unlock()
	for key := range obj.slots {
		w.feedFor(key).removed.Add(id)
	}
	obj.slots = map[attr.TypeKey][]*slot{}
}

func (w *World) feedFor(key attr.TypeKey) *feed {
	f, _ := w.feeds.LoadOrCompute(key, newFeed)
	return f
}

func (w *World) dirtyFor(key attr.TypeKey) mapset.Set[attr.ObjectID] {
	s, _ := w.dirty.LoadOrCompute(key, func() mapset.Set[attr.ObjectID] {
		return mapset.NewSet[attr.ObjectID]()
	})
	return s
}

// Attach adds v to obj as an instance of type T and records a change
// event for T. Multiple instances of one type may coexist on the same
// object; they are reported back in attachment order.
func Attach[T any](w *World, id attr.ObjectID, v T) bool {
	obj, ok := w.objects.Load(id)
	if !ok {
		return false
	}
	key := attr.KeyOf[T]()
	obj.mu.Lock()
	obj.slots[key] = append(obj.slots[key], &slot{value: v, version: 1})
	obj.mu.Unlock()
	w.feedFor(key).changed.Add(id)
	return true
}

// Update mutates the first attached instance of type T on obj through
// fn and records a change event. Mutating a value behind Get's back
// is invisible to change detection; all writes go through here.
func Update[T any](w *World, id attr.ObjectID, fn func(v T) T) bool {
	obj, ok := w.objects.Load(id)
	if !ok {
		return false
	}
	key := attr.KeyOf[T]()
	obj.mu.Lock()
	slots := obj.slots[key]
	if len(slots) == 0 {
		obj.mu.Unlock()
		return false
	}
	s := slots[0]
	s.value = fn(s.value.(T))
	s.version++
	obj.mu.Unlock()
	w.feedFor(key).changed.Add(id)
	return true
}

// Get returns the first attached instance of type T on obj.
func Get[T any](w *World, id attr.ObjectID) (T, bool) {
	var zero T
	obj, ok := w.objects.Load(id)
	if !ok {
		return zero, false
	}
	obj.mu.Lock()
	defer obj.mu.Unlock()
	slots := obj.slots[attr.KeyOf[T]()]
	if len(slots) == 0 {
		return zero, false
	}
	return slots[0].value.(T), true
}

// Detach removes every attached instance of type T from obj and
// records a removal event for T.
func Detach[T any](w *World, id attr.ObjectID) bool {
	obj, ok := w.objects.Load(id)
	if !ok {
		return false
	}
	key := attr.KeyOf[T]()
	obj.mu.Lock()
	_, had := obj.slots[key]
	delete(obj.slots, key)
	obj.mu.Unlock()
	if !had {
		return false
	}
	w.feedFor(key).removed.Add(id)
	return true
}

// Version returns the mutation counter of the first attached instance
// of type T, or zero when none is attached.
func Version[T any](w *World, id attr.ObjectID) uint32 {
	obj, ok := w.objects.Load(id)
	if !ok {
		return 0
	}
	obj.mu.Lock()
	defer obj.mu.Unlock()
	slots := obj.slots[attr.KeyOf[T]()]
	if len(slots) == 0 {
		return 0
	}
	return slots[0].version
}
