package trajectory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/OCAP2/aimsolver/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a Solver.
type Option func(*options)

type options struct {
	meter metric.Meter
}

// WithMeter records solver metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// Solver computes launch solutions for constant-gravity projectile motion
// without drag. It holds no mutable state and is safe for concurrent use.
type Solver struct {
	c Constants

	// OTEL metrics
	solves metric.Int64Counter
	hits   metric.Int64Counter
}

// NewSolver validates c and returns a solver using it.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewSolver(c Constants, opts ...Option) (*Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.meter == nil {
		o.meter = meter()
	}

	s := &Solver{c: c}

	var err error
	s.solves, err = o.meter.Int64Counter(
		"trajectory.solves",
		metric.WithDescription("Total solve calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating solves counter: %w", err)
	}

	s.hits, err = o.meter.Int64Counter(
		"trajectory.hits",
		metric.WithDescription("Total launch solutions returned"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}

	return s, nil
}

// Solve returns the launch solutions reaching target in the given mode,
// best first. An unreachable target yields an empty slice, not an error.
func (s *Solver) Solve(mode core.Mode, target core.RelativeTarget) ([]core.Hit, error) {
	if !target.Finite() {
		return nil, fmt.Errorf("%w: target %+v is not finite", core.ErrInvalidInput, target)
	}

	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %v", core.ErrInvalidInput, mode)
	}

	var hits []core.Hit
	switch mode {
	case core.ModeAngle:
		hits = s.SolveAngle(target.DX, target.DY)
	case core.ModeVelocity:
		hits = s.SolveVelocity(target.DX, target.DY)
	}

	modeAttr := metric.WithAttributes(attribute.String("mode", mode.String()))
	s.solves.Add(context.Background(), 1, modeAttr)
	s.hits.Add(context.Background(), int64(len(hits)), modeAttr)

	return hits, nil
}

// SolveAngle finds every launch angle that reaches (dx, dy) at the fixed
// launch velocity, ordered by ascending flight time.
//
// With u = tan(θ) and a = g·dx²/(2·v²) the range equation
// dy = dx·tan(θ) − g·dx²/(2·v²·cos²(θ)) becomes a·u² − dx·u + (a + dy) = 0.
func (s *Solver) SolveAngle(dx, dy float64) []core.Hit {
	if (core.RelativeTarget{DX: dx, DY: dy}).Zero() {
		return nil
	}
	if dx == 0 {
		return s.vertical(dy)
	}

	g, v := s.c.Gravity, s.c.LaunchVelocity
	a := g * dx * dx / (2 * v * v)
	disc := dx*dx - 4*a*(a+dy)
	if disc < 0 {
		// at maximum range the double root can round to a slightly negative
		// discriminant; hit rejects the root if it misses the target
		if disc < -s.c.Tolerance*dx*dx {
			return nil
		}
		disc = 0
	}

	// numerically stable quadratic roots; q cannot be zero since dx != 0
	q := 0.5 * (dx + math.Copysign(math.Sqrt(disc), dx))
	roots := []float64{q / a}
	if disc > 0 {
		roots = append(roots, (a+dy)/q)
	}

	hits := make([]core.Hit, 0, len(roots))
	for _, u := range roots {
		theta := math.Atan(u)
		if dx < 0 {
			theta += math.Pi
		}
		if h, ok := s.hit(dx, dy, theta, v); ok {
			hits = append(hits, h)
		}
	}

	sortByTime(hits)
	return hits
}

// vertical handles dx == 0, where the range equation divides by zero.
func (s *Solver) vertical(dy float64) []core.Hit {
	g, v := s.c.Gravity, s.c.LaunchVelocity
	disc := v*v - 2*g*dy
	if disc < 0 {
		return nil
	}
	root := math.Sqrt(disc)

	var hits []core.Hit
	if dy > 0 {
		// first crossing on the way up
		hits = append(hits, core.Hit{Angle: 90, Velocity: v, Time: (v - root) / g})
	} else {
		hits = append(hits,
			core.Hit{Angle: -90, Velocity: v, Time: (root - v) / g},
			core.Hit{Angle: 90, Velocity: v, Time: (v + root) / g},
		)
	}

	valid := hits[:0]
	for _, h := range hits {
		if h.Time > 0 && s.landsVertically(dy, h) {
			valid = append(valid, h)
		}
	}

	sortByTime(valid)
	return valid
}

// SolveVelocity sweeps the configured elevations and solves the launch
// velocity for each one, ordered by ascending velocity.
//
// v² = g·dx² / (2·cos²(θ)·(dx·tan(θ) − dy)); angles where the right-hand
// side is not a positive finite number are skipped.
func (s *Solver) SolveVelocity(dx, dy float64) []core.Hit {
	// no swept non-vertical angle can reach a point straight above or below
	if dx == 0 {
		return nil
	}

	g := s.c.Gravity
	n := s.c.sweepCount()
	hits := make([]core.Hit, 0, n)

	for i := 0; i < n; i++ {
		deg := s.c.sweepAngle(i)
		if dx < 0 {
			deg = 180 - deg
		}
		theta := deg * math.Pi / 180

		cos := math.Cos(theta)
		if math.Abs(cos) < MinCos {
			continue
		}

		v2 := g * dx * dx / (2 * cos * cos * (dx*math.Tan(theta) - dy))
		if !(v2 > 0) || math.IsInf(v2, 0) {
			continue
		}

		if h, ok := s.hit(dx, dy, theta, math.Sqrt(v2)); ok {
			// keep the swept angle exactly as configured
			h.Angle = deg
			hits = append(hits, h)
		}
	}

	slices.SortStableFunc(hits, func(a, b core.Hit) int {
		return cmp.Or(
			cmp.Compare(a.Velocity, b.Velocity),
			cmp.Compare(a.Angle, b.Angle),
			cmp.Compare(a.Time, b.Time),
		)
	})
	return hits
}

// Path samples the flight of h from the origin to the target. The result
// is in the physics frame and has at least two points.
func (s *Solver) Path(h core.Hit, samples int) geom.LineString {
	samples = max(samples, 2)
	theta := h.Angle * math.Pi / 180
	vx := h.Velocity * math.Cos(theta)
	vy := h.Velocity * math.Sin(theta)

	flat := make([]float64, 0, samples*2)
	for i := 0; i < samples; i++ {
		t := h.Time * float64(i) / float64(samples-1)
		flat = append(flat, vx*t, vy*t-0.5*s.c.Gravity*t*t)
	}

	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// hit builds the solution for launch angle theta (radians) and speed v, and
// reports whether it actually lands on (dx, dy).
func (s *Solver) hit(dx, dy, theta, v float64) (core.Hit, bool) {
	cos := math.Cos(theta)
	if math.Abs(cos) < MinCos {
		return core.Hit{}, false
	}

	t := dx / (v * cos)
	if !(t > 0) || math.IsInf(t, 0) {
		return core.Hit{}, false
	}

	x := v * cos * t
	y := v*math.Sin(theta)*t - 0.5*s.c.Gravity*t*t
	tol := s.tolerance(dx, dy)
	if math.Abs(x-dx) > tol || math.Abs(y-dy) > tol {
		return core.Hit{}, false
	}

	return core.Hit{Angle: theta * 180 / math.Pi, Velocity: v, Time: t}, true
}

func (s *Solver) landsVertically(dy float64, h core.Hit) bool {
	vy := h.Velocity
	if h.Angle < 0 {
		vy = -vy
	}
	y := vy*h.Time - 0.5*s.c.Gravity*h.Time*h.Time
	return math.Abs(y-dy) <= s.tolerance(0, dy)
}

func (s *Solver) tolerance(dx, dy float64) float64 {
	return s.c.Tolerance * (1 + math.Abs(dx) + math.Abs(dy))
}

func sortByTime(hits []core.Hit) {
	slices.SortStableFunc(hits, func(a, b core.Hit) int {
		return cmp.Or(
			cmp.Compare(a.Time, b.Time),
			cmp.Compare(a.Angle, b.Angle),
		)
	})
}
