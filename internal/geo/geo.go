package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/aimsolver/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// SCREEN TO PHYSICS FRAME
// Window coordinates grow downward; the solver treats up as positive. The
// translator subtracts the two points and flips the vertical component so a
// target above the origin yields a positive dy.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = fmt.Errorf("%w: invalid coordinates provided", core.ErrInvalidInput)

// Translator converts window positions into a relative target vector.
type Translator struct {
	// ReferenceWidth, when positive, rescales the displacement so that a
	// window of this width maps one pixel to one physics unit. Zero keeps
	// raw pixels.
	ReferenceWidth float64
}

// Translate returns the displacement from `from` to `to` in the physics frame.
func (t Translator) Translate(rect core.Rect, from, to core.Point2D) (core.RelativeTarget, error) {
	if !rect.Finite() || rect.Empty() {
		return core.RelativeTarget{}, fmt.Errorf("%w: degenerate window rect %+v", core.ErrInvalidInput, rect)
	}
	if !from.Finite() {
		return core.RelativeTarget{}, fmt.Errorf("%w: source position is not finite", core.ErrInvalidInput)
	}
	if !to.Finite() {
		return core.RelativeTarget{}, fmt.Errorf("%w: target position is not finite", core.ErrInvalidInput)
	}

	d := to.XY().Sub(from.XY())
	// screen y points down
	d.Y = -d.Y

	if t.ReferenceWidth > 0 {
		d = d.Scale(t.ReferenceWidth / rect.Width())
	}

	rel := core.RelativeTarget{DX: d.X, DY: d.Y}
	if !rel.Finite() {
		return core.RelativeTarget{}, fmt.Errorf("%w: displacement overflows", core.ErrInvalidInput)
	}
	return rel, nil
}

// Translate is a convenience wrapper using raw pixel units.
func Translate(rect core.Rect, from, to core.Point2D) (core.RelativeTarget, error) {
	return Translator{}.Translate(rect, from, to)
}

// PointFromString parses a string in the format "x,y" into a window position
func PointFromString(coords string) (core.Point2D, error) {
	values, err := parseFloats(coords, 2)
	if err != nil {
		return core.Point2D{}, err
	}
	p := core.Point2D{X: values[0], Y: values[1]}
	if !p.Finite() {
		return core.Point2D{}, ErrInvalidCoordinates
	}
	return p, nil
}

// RectFromString parses a string in the format "left,top,right,bottom" into a window rect
func RectFromString(coords string) (core.Rect, error) {
	values, err := parseFloats(coords, 4)
	if err != nil {
		return core.Rect{}, err
	}
	r := core.Rect{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}
	if !r.Finite() || r.Empty() {
		return core.Rect{}, ErrInvalidCoordinates
	}
	return r, nil
}

// parseFloats reads exactly n comma separated numbers; surrounding quotes and
// whitespace are tolerated.
func parseFloats(s string, n int) ([]float64, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, ErrInvalidCoordinates
	}
	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, ErrInvalidCoordinates
		}
		values[i] = v
	}
	return values, nil
}

// ToScreen maps a physics-frame offset from origin back into window
// coordinates. It is the inverse of Translate for a fixed origin.
func (t Translator) ToScreen(rect core.Rect, origin core.Point2D, offset geom.XY) core.Point2D {
	if t.ReferenceWidth > 0 && !rect.Empty() {
		offset = offset.Scale(rect.Width() / t.ReferenceWidth)
	}
	return core.Point2D{X: origin.X + offset.X, Y: origin.Y - offset.Y}
}
