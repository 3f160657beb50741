package attendance

import (
	"fmt"

	"github.com/google/uuid"
)

// ChartInstance is one chart bound to a canvas.
type ChartInstance struct {
	ID    string
	View  ChartView
	alive bool
}

// Alive reports whether the instance still owns its canvas.
func (i *ChartInstance) Alive() bool {
	return i != nil && i.alive
}

// ChartCanvas owns at most one live chart. The previous instance is always
// destroyed before the next one is constructed.
type ChartCanvas struct {
	target  Target
	specs   map[ChartKind]ChartSpec
	kinds   []ChartKind
	render  func(ChartSpec) (ChartView, error)
	active  *ChartInstance
	live    int
	created int
}

func newChartCanvas(target Target) *ChartCanvas {
	return &ChartCanvas{target: target, specs: map[ChartKind]ChartSpec{}}
}

// Target returns the slot the canvas is bound to.
func (c *ChartCanvas) Target() Target { return c.target }

// Load caches specs and shows the first one. Later switches reuse the cached
// specs and never refetch.
func (c *ChartCanvas) Load(specs []ChartSpec, render func(ChartSpec) (ChartView, error)) error {
	if len(specs) == 0 {
		return fmt.Errorf("attendance: canvas %s: no charts to load", c.target)
	}
	c.specs = make(map[ChartKind]ChartSpec, len(specs))
	c.kinds = c.kinds[:0]
	for _, spec := range specs {
		if _, dup := c.specs[spec.Kind]; !dup {
			c.kinds = append(c.kinds, spec.Kind)
		}
		c.specs[spec.Kind] = spec
	}
	c.render = render
	return c.Switch(specs[0].Kind)
}

// Switch replaces the active chart with kind.
func (c *ChartCanvas) Switch(kind ChartKind) error {
	spec, ok := c.specs[kind]
	if !ok || c.render == nil {
		return fmt.Errorf("%w: %s", ErrUnknownChart, kind)
	}
	view, err := c.render(spec)
	if err != nil {
		return fmt.Errorf("attendance: canvas %s: render %s: %w", c.target, kind, err)
	}
	c.destroyActive()
	c.active = &ChartInstance{ID: uuid.NewString(), View: view, alive: true}
	c.live++
	c.created++
	return nil
}

// Active returns the live instance, if any.
func (c *ChartCanvas) Active() *ChartInstance {
	return c.active
}

// ActiveKind returns the kind of the live chart.
func (c *ChartCanvas) ActiveKind() (ChartKind, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.View.Kind, true
}

// Kinds lists the cached chart kinds in load order.
func (c *ChartCanvas) Kinds() []ChartKind {
	return append([]ChartKind(nil), c.kinds...)
}

// LiveInstances counts instances that have not been destroyed.
func (c *ChartCanvas) LiveInstances() int {
	return c.live
}

// Created counts instances constructed over the canvas lifetime.
func (c *ChartCanvas) Created() int {
	return c.created
}

// Clear destroys the live chart and drops the cached specs.
func (c *ChartCanvas) Clear() {
	c.destroyActive()
	c.specs = map[ChartKind]ChartSpec{}
	c.kinds = nil
	c.render = nil
}

func (c *ChartCanvas) destroyActive() {
	if c.active == nil {
		return
	}
	c.active.alive = false
	c.active = nil
	c.live--
}
