package main

import "github.com/delaneyj/attrparty/attr"

// Actor is plain host data, untouched by the engine.
type Actor struct {
	Name string
}

// RegenRate is plain host data consumed by the regenerate step.
type RegenRate struct {
	PerTick int
}

// Health is derived entirely from its modifiers: MaxHealth pours the
// cap in, Damage subtracts.
type Health struct {
	Current int
}

func (h *Health) Reset() {
	h.Current = 0
}

// MaxHealth is both an attribute (modified by charms) and a modifier
// of Health on the same object.
type MaxHealth struct {
	Cap int
}

func (m *MaxHealth) Reset() {
	m.Cap = 20
}

func (m *MaxHealth) Priority() attr.Priority {
	return attr.Zero()
}

func (m *MaxHealth) Apply(h *Health) {
	h.Current += m.Cap
}

type ExtraMaxHealthCharm struct{}

func (c *ExtraMaxHealthCharm) Priority() attr.Priority {
	return attr.Zero()
}

func (c *ExtraMaxHealthCharm) Apply(m *MaxHealth) {
	m.Cap += 10
}

// Damage applies after MaxHealth and never drops health below zero.
type Damage struct {
	Amount int
}

func (d *Damage) Priority() attr.Priority {
	return attr.Zero().After()
}

func (d *Damage) Apply(h *Health) {
	h.Current = max(h.Current-d.Amount, 0)
}
