package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/OCAP2/aimsolver/internal/dispatcher"
	"github.com/OCAP2/aimsolver/internal/geo"
	"github.com/OCAP2/aimsolver/internal/logging"
	"github.com/OCAP2/aimsolver/internal/results"
	"github.com/OCAP2/aimsolver/internal/session"
	"github.com/OCAP2/aimsolver/internal/trajectory"
	"github.com/OCAP2/aimsolver/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
)

// PathSamples is the number of points rendered by :PATH:.
const PathSamples = 16

var (
	// ErrPositionsNotSet is returned by :CALC: until both positions are saved.
	ErrPositionsNotSet = errors.New("positions not set")
	// ErrNoResult is returned by :PATH: before any calculation.
	ErrNoResult = errors.New("no calculation result")
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Solver     *trajectory.Solver
	Translator geo.Translator
	LogManager *logging.SlogManager
	MaxHits    int
	AppName    string
	Version    string
	BuildDate  string
}

// Service implements the operator commands on top of a session
type Service struct {
	deps         Dependencies
	ctx          *session.Context
	writeLogFunc func(command, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies, ctx *session.Context) *Service {
	s := &Service{
		deps: deps,
		ctx:  ctx,
	}
	s.writeLogFunc = func(command, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(command, data, level)
		}
	}
	return s
}

// Session returns the session context
func (s *Service) Session() *session.Context {
	return s.ctx
}

func (s *Service) writeLog(command, data, level string) {
	s.writeLogFunc(command, data, level)
}

// Register wires every command into d.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(":SOURCE:", s.SaveSource, dispatcher.Logged())
	d.Register(":TARGET:", s.SaveTarget, dispatcher.Logged())
	d.Register(":RECT:", s.SetRect, dispatcher.Logged())
	d.Register(":CALC:", s.Calculate, dispatcher.Logged())
	d.Register(":CLEAR:", s.Clear, dispatcher.Logged())
	d.Register(":MODE:", s.SwitchMode, dispatcher.Logged())
	d.Register(":PATH:", s.Path, dispatcher.Logged())
	d.Register(":INFO:", s.Info)
	d.Register(":VERSION:", s.Version)

	// annotations from piped tools, written off the command path
	d.Register(":LOG:", s.Annotate, dispatcher.Buffered(64), dispatcher.Blocking())
}

// SaveSource stores position 1. Accepts "x,y" or "x y".
func (s *Service) SaveSource(e dispatcher.Event) (any, error) {
	p, err := geo.PointFromString(joinNumbers(e.Args))
	if err != nil {
		return nil, err
	}
	s.ctx.SetSource(p)
	return s.ctx.Snapshot(), nil
}

// SaveTarget stores position 2.
func (s *Service) SaveTarget(e dispatcher.Event) (any, error) {
	p, err := geo.PointFromString(joinNumbers(e.Args))
	if err != nil {
		return nil, err
	}
	s.ctx.SetTarget(p)
	return s.ctx.Snapshot(), nil
}

// SetRect replaces the window rectangle ("left,top,right,bottom").
func (s *Service) SetRect(e dispatcher.Event) (any, error) {
	r, err := geo.RectFromString(joinNumbers(e.Args))
	if err != nil {
		return nil, err
	}
	s.ctx.SetRect(r)
	return fmt.Sprintf("Window: %gx%g", r.Width(), r.Height()), nil
}

// Calculate solves for the saved positions in the current mode.
func (s *Service) Calculate(e dispatcher.Event) (any, error) {
	snap := s.ctx.Snapshot()
	if !snap.Ready() {
		return nil, ErrPositionsNotSet
	}

	target, err := s.deps.Translator.Translate(snap.Rect, snap.Source, snap.Target)
	if err != nil {
		return nil, err
	}

	hits, err := s.deps.Solver.Solve(snap.Mode, target)
	if err != nil {
		return nil, err
	}

	s.ctx.SetLastResult(session.Result{
		Origin: snap.Source,
		Rect:   snap.Rect,
		Mode:   snap.Mode,
		Target: target,
		Hits:   hits,
	})

	s.writeLog(":CALC:", fmt.Sprintf("mode=%s dx=%.2f dy=%.2f hits=%d",
		snap.Mode, target.DX, target.DY, len(hits)), "INFO")

	return results.Summarize(hits, s.maxHits()), nil
}

// Clear forgets both positions.
func (s *Service) Clear(e dispatcher.Event) (any, error) {
	s.ctx.Clear()
	return s.ctx.Snapshot(), nil
}

// SwitchMode toggles the mode, or sets it when a mode name is given.
func (s *Service) SwitchMode(e dispatcher.Event) (any, error) {
	name := e.Arg(0)
	if name == "" {
		s.ctx.ToggleMode()
		return s.ctx.Snapshot(), nil
	}

	m, err := core.ParseMode(name)
	if err != nil {
		return nil, err
	}
	s.ctx.SetMode(m)
	return s.ctx.Snapshot(), nil
}

// Info returns the current session state.
func (s *Service) Info(e dispatcher.Event) (any, error) {
	return s.ctx.Snapshot(), nil
}

// Version returns the application name, version and build date.
func (s *Service) Version(e dispatcher.Event) (any, error) {
	return []string{s.deps.AppName, s.deps.Version, s.deps.BuildDate}, nil
}

// Path renders the flight of hit n (default 0) from the last calculation as
// WKT in window coordinates.
func (s *Service) Path(e dispatcher.Event) (any, error) {
	last, ok := s.ctx.LastResult()
	if !ok {
		return nil, ErrNoResult
	}

	n := 0
	if arg := e.Arg(0); arg != "" {
		var err error
		n, err = strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: hit index %q", core.ErrInvalidInput, arg)
		}
	}
	if n < 0 || n >= len(last.Hits) {
		return nil, fmt.Errorf("%w: hit index %d out of range [0,%d)", core.ErrInvalidInput, n, len(last.Hits))
	}

	seq := s.deps.Solver.Path(last.Hits[n], PathSamples).Coordinates()
	flat := make([]float64, 0, seq.Length()*2)
	for i := 0; i < seq.Length(); i++ {
		p := s.deps.Translator.ToScreen(last.Rect, last.Origin, seq.GetXY(i))
		flat = append(flat, p.X, p.Y)
	}

	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)).AsText(), nil
}

// Annotate writes the arguments to the session log.
func (s *Service) Annotate(e dispatcher.Event) (any, error) {
	msg := strings.TrimSpace(strings.Join(e.Args, " "))
	if msg == "" {
		return nil, nil
	}
	s.writeLog(":LOG:", msg, "INFO")
	return nil, nil
}

func (s *Service) maxHits() int {
	if s.deps.MaxHits > 0 {
		return s.deps.MaxHits
	}
	return results.MaxShown
}

// joinNumbers accepts "1,2", "1 2" or "1, 2" spread over args and
// returns "1,2".
func joinNumbers(args []string) string {
	parts := strings.FieldsFunc(strings.Join(args, " "), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return strings.Join(parts, ",")
}
