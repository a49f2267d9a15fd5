package world

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/attrparty/attr"
)

// attr.Store implementation. These are the only operations the engine
// uses; everything in world.go is host-side surface.

func (w *World) Attribute(id attr.ObjectID, attrType attr.TypeKey) (attr.Value, bool) {
	obj, ok := w.objects.Load(id)
	if !ok {
		return nil, false
	}
	obj.mu.Lock()
	defer obj.mu.Unlock()
	slots := obj.slots[attrType]
	if len(slots) == 0 {
		return nil, false
	}
	value, ok := slots[0].value.(attr.Value)
	return value, ok
}

func (w *World) Modifiers(id attr.ObjectID, attrType attr.TypeKey) []attr.AttachedModifier {
	obj, ok := w.objects.Load(id)
	if !ok {
		return nil
	}
	w.bindMu.Lock()
	modTypes := w.attrMods[attrType]
	w.bindMu.Unlock()

	obj.mu.Lock()
	defer obj.mu.Unlock()
	var attached []attr.AttachedModifier
	for _, modType := range modTypes {
		for _, s := range obj.slots[modType] {
			attached = append(attached, attr.AttachedModifier{
				Type:     modType,
				Instance: s.value,
			})
		}
	}
	return attached
}

func (w *World) Changed(modType attr.TypeKey) []attr.ObjectID {
	return drain(w.feedFor(modType).changed)
}

func (w *World) Removed(modType attr.TypeKey) []attr.ObjectID {
	return drain(w.feedFor(modType).removed)
}

func (w *World) Alive(id attr.ObjectID) bool {
	_, ok := w.objects.Load(id)
	return ok
}

func (w *World) MarkDirty(id attr.ObjectID, attrType attr.TypeKey) {
	w.dirtyFor(attrType).Add(id)
}

func (w *World) ClearDirty(id attr.ObjectID, attrType attr.TypeKey) {
	w.dirtyFor(attrType).Remove(id)
}

func (w *World) Dirty(attrType attr.TypeKey) []attr.ObjectID {
	return w.dirtyFor(attrType).ToSlice()
}

// BindModifier implements attr.ModifierBinder, recording which
// modifier types target which attribute type so Modifiers can answer
// the heterogeneous query.
func (w *World) BindModifier(modType, attrType attr.TypeKey) {
	w.bindMu.Lock()
	defer w.bindMu.Unlock()
	w.attrMods[attrType] = append(w.attrMods[attrType], modType)
}

// drain empties the set element by element so no concurrent add is
// lost between snapshot and clear.
func drain(s mapset.Set[attr.ObjectID]) []attr.ObjectID {
	var out []attr.ObjectID
	for {
		id, ok := s.Pop()
		if !ok {
			return out
		}
		out = append(out, id)
	}
}
