package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/OCAP2/aimsolver/internal/results"
	"github.com/OCAP2/aimsolver/internal/session"
	"github.com/OCAP2/aimsolver/pkg/core"

	"github.com/stretchr/testify/assert"
)

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestConsole_Info(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	c.Info("Waiting for input ...")

	assert.Equal(t, "[INFO] Waiting for input ...\n", buf.String())
}

func TestConsole_Error(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	c.Error(errors.New("positions not set"))

	assert.Equal(t, "[ERROR] positions not set\n", buf.String())
}

func TestConsole_Plain(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	c.Plain("Best -> 45°@20.0/2.83s")

	assert.Equal(t, "Best -> 45°@20.0/2.83s\n", buf.String())
}

func TestConsole_MenuNotSet(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	c.Menu(session.NewContext().Snapshot())

	got := lines(&buf)
	assert.Equal(t, []string{
		"[INFO] 1 x,y: Save Position 1",
		"[INFO] 2 x,y: Save Position 2",
		"[INFO] 3: Calculate",
		"[INFO] 4: Clear Positions",
		"[INFO] 5: Switch Calculation Mode",
		"[INFO] 6: Clear Console",
		"",
		"[INFO] Position 1: Not set",
		"[INFO] Position 2: Not set",
		"[INFO] Mode: VELOCITY",
	}, got)
}

func TestConsole_MenuWithPositions(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	ctx := session.NewContext()
	ctx.SetSource(core.Point2D{X: 120, Y: 640})
	ctx.SetTarget(core.Point2D{X: 980.5, Y: 610})
	ctx.SetMode(core.ModeAngle)

	c.Menu(ctx.Snapshot())

	out := buf.String()
	assert.Contains(t, out, "[INFO] Position 1: (120, 640)\n")
	assert.Contains(t, out, "[INFO] Position 2: (980.5, 610)\n")
	assert.Contains(t, out, "[INFO] Mode: ANGLE\n")
}

func TestConsole_Results(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	hits := []core.Hit{{Angle: 45, Velocity: 20, Time: 2.83}}
	c.Results(results.Summarize(hits, results.MaxShown))

	assert.Equal(t, []string{
		"[INFO] Results:",
		"Best -> 45°@20.0/2.83s",
		"40 -> 45°@20.0/2.83s",
	}, lines(&buf))
}

func TestConsole_Value(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)

	c.Value(nil)
	c.Value("ok")
	c.Value([]string{"aimsolver", "dev"})
	c.Value(3)
	c.Value(session.NewContext().Snapshot())

	assert.Equal(t, []string{
		"[INFO] ok",
		"[INFO] aimsolver",
		"[INFO] dev",
		"[INFO] 3",
		"[INFO] 1 x,y: Save Position 1",
		"[INFO] 2 x,y: Save Position 2",
		"[INFO] 3: Calculate",
		"[INFO] 4: Clear Positions",
		"[INFO] 5: Switch Calculation Mode",
		"[INFO] 6: Clear Console",
		"",
		"[INFO] Position 1: Not set",
		"[INFO] Position 2: Not set",
		"[INFO] Mode: VELOCITY",
	}, lines(&buf))
}

func TestConsole_Clear(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Clear()
	assert.Equal(t, clearSequence, buf.String())
}
