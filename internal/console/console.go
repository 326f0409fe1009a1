// Package console renders operator-facing output.
//
// Lines are written through a zerolog ConsoleWriter whose level part is
// rendered as "[INFO]" and whose timestamp is omitted. Result rows are
// logged without a level so they print bare.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OCAP2/aimsolver/internal/results"
	"github.com/OCAP2/aimsolver/internal/session"
	"github.com/OCAP2/aimsolver/pkg/core"

	"github.com/rs/zerolog"
)

const clearSequence = "\033[H\033[2J"

// MenuEntries are the key bindings shown above the session state.
var MenuEntries = []string{
	"1 x,y: Save Position 1",
	"2 x,y: Save Position 2",
	"3: Calculate",
	"4: Clear Positions",
	"5: Switch Calculation Mode",
	"6: Clear Console",
}

// Console writes operator output
type Console struct {
	out io.Writer
	log zerolog.Logger
}

// New creates a Console writing to out. Colors are used when color is true.
func New(out io.Writer, color bool) *Console {
	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			s, ok := i.(string)
			if !ok || s == "" {
				return ""
			}
			return "[" + strings.ToUpper(s) + "]"
		},
	}
	return &Console{
		out: out,
		log: zerolog.New(cw),
	}
}

// Info prints an "[INFO]" line.
func (c *Console) Info(msg string) {
	c.log.Info().Msg(msg)
}

// Error prints an "[ERROR]" line for err.
func (c *Console) Error(err error) {
	c.log.Error().Msg(err.Error())
}

// Plain prints msg without a level tag.
func (c *Console) Plain(msg string) {
	c.log.Log().Msg(msg)
}

// Clear wipes the terminal.
func (c *Console) Clear() {
	io.WriteString(c.out, clearSequence)
}

// Menu prints the key bindings followed by the saved positions and mode.
func (c *Console) Menu(s session.Snapshot) {
	for _, e := range MenuEntries {
		c.Info(e)
	}
	c.Plain("")
	c.Info("Position 1: " + position(s.Source, s.HasSource))
	c.Info("Position 2: " + position(s.Target, s.HasTarget))
	c.Info("Mode: " + s.Mode.String())
}

// Results prints a calculation report.
func (c *Console) Results(r results.Report) {
	c.Info("Results:")
	for _, line := range r.Lines() {
		c.Plain(line)
	}
}

// Value prints a handler result.
func (c *Console) Value(v any) {
	switch v := v.(type) {
	case nil:
	case session.Snapshot:
		c.Menu(v)
	case results.Report:
		c.Results(v)
	case []string:
		for _, s := range v {
			c.Info(s)
		}
	case string:
		c.Info(v)
	default:
		c.Info(fmt.Sprint(v))
	}
}

func position(p core.Point2D, ok bool) string {
	if !ok {
		return "Not set"
	}
	return "(" + formatCoord(p.X) + ", " + formatCoord(p.Y) + ")"
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
