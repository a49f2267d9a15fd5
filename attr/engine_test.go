package attr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/attrparty/attr"
	"github.com/delaneyj/attrparty/world"
)

// Health keeps its baseline across resets so scenarios can pick any
// starting value; only the modifier-derived part is recomputed.
type Health struct {
	Current int
	Base    int
}

func (h *Health) Reset() { h.Current = h.Base }

type MaxHealth struct {
	Cap int
}

func (m *MaxHealth) Reset() { m.Cap = 20 }
func (m *MaxHealth) Priority() attr.Priority { return attr.Zero() }
func (m *MaxHealth) Apply(h *Health) { h.Current += m.Cap }

type Damage struct {
	Amount int
}

func (d *Damage) Priority() attr.Priority { return attr.Zero().After() }
func (d *Damage) Apply(h *Health) { h.Current = max(h.Current-d.Amount, 0) }

type ExtraMaxHealthCharm struct{}

func (c *ExtraMaxHealthCharm) Priority() attr.Priority { return attr.Zero() }
func (c *ExtraMaxHealthCharm) Apply(m *MaxHealth) { m.Cap += 10 }

// Trace records the order modifiers were applied in.
type Trace struct {
	Applied string
}

func (t *Trace) Reset() { t.Applied = "" }

type AppendA struct{ Letter string }

func (a *AppendA) Priority() attr.Priority { return attr.Zero() }
func (a *AppendA) Apply(t *Trace) { t.Applied += a.Letter }

type AppendB struct{ Letter string }

func (b *AppendB) Priority() attr.Priority { return attr.Zero().After() }
func (b *AppendB) Apply(t *Trace) { t.Applied += b.Letter }

// AppendTied has the same priority as AppendA but a different type,
// forcing the type-key tie-break.
type AppendTied struct{ Letter string }

func (a *AppendTied) Priority() attr.Priority { return attr.Zero() }
func (a *AppendTied) Apply(t *Trace) { t.Applied += a.Letter }

// AppendCalm is AppendTied but declares the tie intentional.
type AppendCalm struct{ Letter string }

func (a *AppendCalm) Priority() attr.Priority { return attr.Zero() }
func (a *AppendCalm) Apply(t *Trace) { t.Applied += a.Letter }
func (a *AppendCalm) OrderIndependent() bool { return true }

type captureLogger struct {
	warns []string
}

func (l *captureLogger) Debug(msg string, args ...any) {}
func (l *captureLogger) Warn(msg string, args ...any) { l.warns = append(l.warns, msg) }

func newHealthEngine(t *testing.T) (*world.World, *attr.Engine) {
	t.Helper()
	w := world.New()
	e := attr.NewEngine(w)
	require.NoError(t, attr.RegisterAttribute[*Health](e))
	require.NoError(t, attr.RegisterModifier[*MaxHealth, *Health](e))
	require.NoError(t, attr.RegisterModifier[*Damage, *Health](e))
	return w, e
}

func newTraceEngine(t *testing.T, log attr.Logger) (*world.World, *attr.Engine) {
	t.Helper()
	w := world.New()
	opts := []attr.EngineOption{}
	if log != nil {
		opts = append(opts, attr.WithLogger(log))
	}
	e := attr.NewEngine(w, opts...)
	require.NoError(t, attr.RegisterAttribute[*Trace](e))
	require.NoError(t, attr.RegisterModifier[*AppendA, *Trace](e))
	require.NoError(t, attr.RegisterModifier[*AppendB, *Trace](e))
	require.NoError(t, attr.RegisterModifier[*AppendTied, *Trace](e))
	require.NoError(t, attr.RegisterModifier[*AppendCalm, *Trace](e))
	return w, e
}

// resetting then applying zero modifiers always yields the baseline
func TestRecomputeWithoutModifiersYieldsBaseline(t *testing.T) {
	w, e := newHealthEngine(t)

	for _, base := range []int{0, 7, 20} {
		id := w.Spawn()
		world.Attach(w, id, &Health{Current: 99, Base: base})
		w.MarkDirty(id, attr.KeyOf[*Health]())

		e.Tick()
		e.Tick()

		h, ok := world.Get[*Health](w, id)
		require.True(t, ok)
		assert.Equal(t, base, h.Current)
	}
}

// B at p.After() always observes A's cumulative result, never the reverse
func TestOrderCorrectness(t *testing.T) {
	w, e := newTraceEngine(t, nil)

	id := w.Spawn()
	world.Attach(w, id, &Trace{})
	// attach in reverse priority order on purpose
	world.Attach(w, id, &AppendB{Letter: "b"})
	world.Attach(w, id, &AppendA{Letter: "a"})

	e.Tick()

	tr, ok := world.Get[*Trace](w, id)
	require.True(t, ok)
	assert.Equal(t, "ab", tr.Applied)
}

// attach + mutate + detach inside one pass ends up as if never attached
func TestCoalescing(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	e.Tick()

	world.Attach(w, id, &Damage{Amount: 5})
	world.Update(w, id, func(d *Damage) *Damage {
		d.Amount += 10
		return d
	})
	world.Detach[*Damage](w, id)

	e.Tick()

	h, ok := world.Get[*Health](w, id)
	require.True(t, ok)
	assert.Equal(t, 20, h.Current)
}

// equal priorities across different types resolve the same way on every run
func TestTieBreakDeterminism(t *testing.T) {
	result := func() string {
		w, e := newTraceEngine(t, &captureLogger{})
		id := w.Spawn()
		world.Attach(w, id, &Trace{})
		world.Attach(w, id, &AppendTied{Letter: "x"})
		world.Attach(w, id, &AppendA{Letter: "y"})
		e.Tick()
		tr, ok := world.Get[*Trace](w, id)
		require.True(t, ok)
		require.Len(t, tr.Applied, 2)
		return tr.Applied
	}

	first := result()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, result())
	}
}

// equal-priority instances of one type keep their attachment order
func TestSameTypeTiesKeepAttachOrder(t *testing.T) {
	w, e := newTraceEngine(t, nil)

	id := w.Spawn()
	world.Attach(w, id, &Trace{})
	world.Attach(w, id, &AppendA{Letter: "1"})
	world.Attach(w, id, &AppendA{Letter: "2"})
	world.Attach(w, id, &AppendA{Letter: "3"})

	e.Tick()

	tr, ok := world.Get[*Trace](w, id)
	require.True(t, ok)
	assert.Equal(t, "123", tr.Applied)
}

// max health pours in at priority 0, damage subtracts right after
func TestHealthRegenScenario(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	world.Attach(w, id, &Damage{Amount: 5})

	e.Tick()
	h, ok := world.Get[*Health](w, id)
	require.True(t, ok)
	assert.Equal(t, 15, h.Current)

	world.Detach[*Damage](w, id)
	e.Tick()
	h, ok = world.Get[*Health](w, id)
	require.True(t, ok)
	assert.Equal(t, 20, h.Current)
}

func TestSaturatingSubtraction(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 20})
	world.Attach(w, id, &Damage{Amount: 50})

	e.Tick()

	h, ok := world.Get[*Health](w, id)
	require.True(t, ok)
	assert.Equal(t, 0, h.Current)
}

// charm attach then detach across two consecutive ticks
func TestCharmAcrossTicks(t *testing.T) {
	w := world.New()
	e := attr.NewEngine(w)
	require.NoError(t, attr.RegisterAttribute[*MaxHealth](e))
	require.NoError(t, attr.RegisterModifier[*ExtraMaxHealthCharm, *MaxHealth](e))

	id := w.Spawn()
	world.Attach(w, id, &MaxHealth{Cap: 20})
	world.Attach(w, id, &ExtraMaxHealthCharm{})

	e.Tick()
	mh, ok := world.Get[*MaxHealth](w, id)
	require.True(t, ok)
	assert.Equal(t, 30, mh.Cap)

	world.Detach[*ExtraMaxHealthCharm](w, id)
	e.Tick()
	mh, ok = world.Get[*MaxHealth](w, id)
	require.True(t, ok)
	assert.Equal(t, 20, mh.Cap)
}

// a charm refresh reaches Health through MaxHealth within one tick
// when the upstream attribute is registered first
func TestAttributeAsModifierCascade(t *testing.T) {
	w := world.New()
	e := attr.NewEngine(w)
	require.NoError(t, attr.RegisterAttribute[*MaxHealth](e))
	require.NoError(t, attr.RegisterModifier[*ExtraMaxHealthCharm, *MaxHealth](e))
	require.NoError(t, attr.RegisterAttribute[*Health](e))
	require.NoError(t, attr.RegisterModifier[*MaxHealth, *Health](e))
	require.NoError(t, attr.RegisterModifier[*Damage, *Health](e))

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	world.Attach(w, id, &ExtraMaxHealthCharm{})

	e.Tick()

	mh, ok := world.Get[*MaxHealth](w, id)
	require.True(t, ok)
	assert.Equal(t, 30, mh.Cap)
	h, ok := world.Get[*Health](w, id)
	require.True(t, ok)
	assert.Equal(t, 30, h.Current)
}

func TestAmbiguityWarning(t *testing.T) {
	log := &captureLogger{}
	w, e := newTraceEngine(t, log)

	id := w.Spawn()
	world.Attach(w, id, &Trace{})
	world.Attach(w, id, &AppendA{Letter: "a"})
	world.Attach(w, id, &AppendTied{Letter: "t"})

	e.Tick()
	assert.NotEmpty(t, log.warns)

	// order-independent on one side suppresses the diagnostic
	log2 := &captureLogger{}
	w2, e2 := newTraceEngine(t, log2)
	id2 := w2.Spawn()
	world.Attach(w2, id2, &Trace{})
	world.Attach(w2, id2, &AppendA{Letter: "a"})
	world.Attach(w2, id2, &AppendCalm{Letter: "c"})

	e2.Tick()
	assert.Empty(t, log2.warns)
}

func TestRegistrationErrors(t *testing.T) {
	w := world.New()
	e := attr.NewEngine(w)

	// modifier before its target attribute is a configuration error
	err := attr.RegisterModifier[*Damage, *Health](e)
	assert.ErrorIs(t, err, attr.ErrUnknownAttribute)

	require.NoError(t, attr.RegisterAttribute[*Health](e))
	assert.ErrorIs(t, attr.RegisterAttribute[*Health](e), attr.ErrAttributeRegistered)

	require.NoError(t, attr.RegisterModifier[*Damage, *Health](e))
	assert.ErrorIs(t, attr.RegisterModifier[*Damage, *Health](e), attr.ErrModifierRegistered)
}

// a dirty mark for a vanished object is dropped, not an error
func TestDanglingDirtyMark(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	w.Despawn(id)
	w.MarkDirty(id, attr.KeyOf[*Health]())

	e.Tick()
	assert.Empty(t, w.Dirty(attr.KeyOf[*Health]()))
}

// a despawned object's removal notifications don't produce dirty marks
func TestDespawnSkipsDirtyMark(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	e.Tick()

	w.Despawn(id)
	e.Tick()

	assert.Empty(t, w.Dirty(attr.KeyOf[*Health]()))
}

// a clean object is not recomputed: no dirty mark, no reset
func TestNoRecomputeWithoutDirtyMark(t *testing.T) {
	w, e := newHealthEngine(t)

	id := w.Spawn()
	world.Attach(w, id, &Health{Base: 0})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	e.Tick()

	// poke the value behind the store's back; with no change events
	// the next tick must leave it alone
	h, ok := world.Get[*Health](w, id)
	require.True(t, ok)
	h.Current = 77

	e.Tick()
	h, _ = world.Get[*Health](w, id)
	assert.Equal(t, 77, h.Current)
}
