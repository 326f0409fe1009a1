// pkg/core/types.go
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrInvalidInput is returned for non-finite coordinates, degenerate window
// rectangles and unknown modes.
var ErrInvalidInput = errors.New("invalid input")

// Point2D is a position in window (screen) coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// XY returns the point as a simplefeatures coordinate pair.
func (p Point2D) XY() geom.XY {
	return geom.XY{X: p.X, Y: p.Y}
}

// Finite reports whether both coordinates are finite numbers.
func (p Point2D) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Rect is the window rectangle in screen coordinates, y growing downward.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return !(r.Width() > 0) || !(r.Height() > 0)
}

// Finite reports whether all edges are finite numbers.
func (r Rect) Finite() bool {
	return isFinite(r.Left) && isFinite(r.Top) && isFinite(r.Right) && isFinite(r.Bottom)
}

// RelativeTarget is the displacement from launch origin to target in the
// physics frame: +x to the right, +y up.
type RelativeTarget struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Finite reports whether both components are finite numbers.
func (t RelativeTarget) Finite() bool {
	return isFinite(t.DX) && isFinite(t.DY)
}

// Zero reports whether origin and target coincide.
func (t RelativeTarget) Zero() bool {
	return t.DX == 0 && t.DY == 0
}

// Mode selects what the solver treats as the unknown.
type Mode uint8

const (
	// ModeAngle solves launch angles at the fixed launch velocity.
	ModeAngle Mode = iota
	// ModeVelocity solves the launch velocity for each angle of the sweep.
	ModeVelocity
)

func (m Mode) String() string {
	switch m {
	case ModeAngle:
		return "ANGLE"
	case ModeVelocity:
		return "VELOCITY"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeAngle || m == ModeVelocity
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeAngle {
		return ModeVelocity
	}
	return ModeAngle
}

// ParseMode parses "angle" or "velocity" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANGLE":
		return ModeAngle, nil
	case "VELOCITY":
		return ModeVelocity, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, s)
	}
}

// Hit is one feasible launch solution.
//
// Angle is in degrees, counter-clockwise from the +x axis, in [-90, 270).
// Time is the flight duration until the projectile reaches the target.
type Hit struct {
	Angle    float64 `json:"angle"`
	Velocity float64 `json:"velocity"`
	Time     float64 `json:"time"`
}

// RoundedAngle is the angle rounded to whole degrees, used for display and
// bucketing.
func (h Hit) RoundedAngle() int {
	return int(math.Round(h.Angle))
}

// String renders the hit as a compact display token, e.g. "42°@87.3/1.21s".
func (h Hit) String() string {
	return fmt.Sprintf("%d°@%.1f/%.2fs", h.RoundedAngle(), h.Velocity, h.Time)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
