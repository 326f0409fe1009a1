// Package session holds the operator's mutable state between commands.
package session

import (
	"sync"

	"github.com/OCAP2/aimsolver/pkg/core"
)

// DefaultRect is used until a window rectangle is reported.
var DefaultRect = core.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Source    core.Point2D
	Target    core.Point2D
	HasSource bool
	HasTarget bool
	Rect      core.Rect
	Mode      core.Mode
}

// Ready reports whether both positions have been saved.
func (s Snapshot) Ready() bool {
	return s.HasSource && s.HasTarget
}

// Result is one finished calculation together with the inputs it used.
type Result struct {
	Origin core.Point2D
	Rect   core.Rect
	Mode   core.Mode
	Target core.RelativeTarget
	Hits   []core.Hit
}

// Context holds the saved positions, window rect, mode and last result
type Context struct {
	mu     sync.RWMutex
	source *core.Point2D
	target *core.Point2D
	rect   core.Rect
	mode   core.Mode
	last   *Result
}

// NewContext creates a new Context in VELOCITY mode with the default rect
func NewContext() *Context {
	return &Context{
		rect: DefaultRect,
		mode: core.ModeVelocity,
	}
}

// SetSource saves position 1
func (c *Context) SetSource(p core.Point2D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = &p
}

// SetTarget saves position 2
func (c *Context) SetTarget(p core.Point2D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = &p
}

// SetRect replaces the window rectangle
func (c *Context) SetRect(r core.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rect = r
}

// Mode returns the current solve mode
func (c *Context) Mode() core.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode sets the solve mode
func (c *Context) SetMode(m core.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// ToggleMode switches the mode and returns the new one
func (c *Context) ToggleMode() core.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	return c.mode
}

// Clear forgets both positions and the last result. Mode and rect are kept.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = nil
	c.target = nil
	c.last = nil
}

// SetLastResult stores a copy of the latest calculation.
func (c *Context) SetLastResult(r Result) {
	r.Hits = append([]core.Hit(nil), r.Hits...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &r
}

// LastResult returns a copy of the latest calculation, if any.
func (c *Context) LastResult() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Result{}, false
	}
	r := *c.last
	r.Hits = append([]core.Hit(nil), r.Hits...)
	return r, true
}

// Snapshot returns a copy of the current state
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{Rect: c.rect, Mode: c.mode}
	if c.source != nil {
		s.Source, s.HasSource = *c.source, true
	}
	if c.target != nil {
		s.Target, s.HasTarget = *c.target, true
	}
	return s
}
