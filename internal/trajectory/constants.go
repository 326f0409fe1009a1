package trajectory

import (
	"fmt"
	"math"

	"github.com/OCAP2/aimsolver/pkg/core"
)

// Physical constants and sweep bounds used when nothing else is configured.
const (
	DefaultGravity        = 9.81
	DefaultLaunchVelocity = 100.0
	DefaultSweepMin       = -89.0
	DefaultSweepMax       = 89.0
	DefaultSweepStep      = 1.0
	DefaultTolerance      = 1e-6

	// MinCos excludes launch angles too close to vertical for the range
	// equation.
	MinCos = 1e-9
)

// Constants are fixed at startup and shared by every solve call.
type Constants struct {
	// Gravity is the downward acceleration, positive.
	Gravity float64
	// LaunchVelocity is the fixed speed assumed in ANGLE mode.
	LaunchVelocity float64
	// SweepMin, SweepMax and SweepStep define the elevations (degrees above
	// horizontal) tried in VELOCITY mode. Both bounds are inclusive.
	SweepMin  float64
	SweepMax  float64
	SweepStep float64
	// Tolerance is the relative landing error a solution may have.
	Tolerance float64
}

// DefaultConstants returns the package defaults.
func DefaultConstants() Constants {
	return Constants{
		Gravity:        DefaultGravity,
		LaunchVelocity: DefaultLaunchVelocity,
		SweepMin:       DefaultSweepMin,
		SweepMax:       DefaultSweepMax,
		SweepStep:      DefaultSweepStep,
		Tolerance:      DefaultTolerance,
	}
}

// Validate checks that the constants describe a usable model.
func (c Constants) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"gravity", c.Gravity},
		{"launchVelocity", c.LaunchVelocity},
		{"sweepStep", c.SweepStep},
		{"tolerance", c.Tolerance},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %v", core.ErrInvalidInput, p.name, p.value)
		}
	}
	if math.IsNaN(c.SweepMin) || math.IsNaN(c.SweepMax) || c.SweepMin > c.SweepMax {
		return fmt.Errorf("%w: sweep range [%v, %v] is empty", core.ErrInvalidInput, c.SweepMin, c.SweepMax)
	}
	if c.SweepMin < -90 || c.SweepMax > 90 {
		return fmt.Errorf("%w: sweep range [%v, %v] exceeds [-90, 90]", core.ErrInvalidInput, c.SweepMin, c.SweepMax)
	}
	return nil
}

// sweepCount is the number of elevations visited by the sweep.
func (c Constants) sweepCount() int {
	// small epsilon so a max that is an exact multiple of step is included
	return int(math.Floor((c.SweepMax-c.SweepMin)/c.SweepStep+1e-9)) + 1
}

// sweepAngle is the i-th elevation of the sweep, computed rather than
// accumulated so every call visits bit-identical angles.
func (c Constants) sweepAngle(i int) float64 {
	return c.SweepMin + float64(i)*c.SweepStep
}
