package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/OCAP2/aimsolver/internal/config"
	"github.com/OCAP2/aimsolver/internal/dispatcher"
	"github.com/OCAP2/aimsolver/internal/logging"
	"github.com/OCAP2/aimsolver/internal/session"
	"github.com/OCAP2/aimsolver/pkg/core"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	var out bytes.Buffer
	a, err := newApp(session.NewContext(), &out, false)
	require.NoError(t, err)
	t.Cleanup(a.dispatcher.Close)
	return a, &out
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		kind    lineKind
		command string
		args    []string
	}{
		{"", lineEmpty, "", nil},
		{"   ", lineEmpty, "", nil},
		{"1 120,640", lineEvent, ":SOURCE:", []string{"120,640"}},
		{"2 980 610", lineEvent, ":TARGET:", []string{"980", "610"}},
		{"3", lineEvent, ":CALC:", []string{}},
		{"4", lineEvent, ":CLEAR:", []string{}},
		{"5", lineEvent, ":MODE:", []string{}},
		{"help", lineEvent, ":INFO:", []string{}},
		{"calc", lineEvent, ":CALC:", []string{}},
		{":mode: angle", lineEvent, ":MODE:", []string{"angle"}},
		{"path 2", lineEvent, ":PATH:", []string{"2"}},
		{"6", lineClear, "", nil},
		{"CLS", lineClear, "", nil},
		{"quit", lineQuit, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := parseLine(tt.line)
			assert.Equal(t, tt.kind, got.kind)
			if tt.kind == lineEvent {
				assert.Equal(t, tt.command, got.event.Command)
				assert.Equal(t, tt.args, got.event.Args)
				assert.False(t, got.event.Timestamp.IsZero())
			}
		})
	}
}

func TestRunLoop_FullSession(t *testing.T) {
	a, out := newTestApp(t)

	input := strings.Join([]string{
		"1 100,500",
		"2 140,500",
		"5",
		"3",
		"bogus",
		"q",
		"3",
	}, "\n")

	require.NoError(t, runLoop(a, strings.NewReader(input), false))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "[INFO] Waiting for input ...\n"))
	assert.Contains(t, text, "[INFO] Position 1: (100, 500)")
	assert.Contains(t, text, "[INFO] Position 2: (140, 500)")
	assert.Contains(t, text, "[INFO] Mode: ANGLE")
	assert.Equal(t, 1, strings.Count(text, "[INFO] Results:"), "input after quit is ignored")
	assert.Contains(t, text, "\nBest -> ")
	assert.Contains(t, text, "[ERROR] unknown command: :BOGUS:")
	assert.Contains(t, text, "\nCommands: :CALC: :CLEAR: :INFO: :LOG: :MODE: :PATH: :RECT: :SOURCE: :TARGET: :VERSION:\n")
	assert.NotContains(t, text, "\033[", "no clear sequences when not interactive")

	last, ok := a.session.LastResult()
	require.True(t, ok)
	assert.Equal(t, core.RelativeTarget{DX: 40, DY: 0}, last.Target)
	assert.NotEmpty(t, last.Hits)
}

func TestRunLoop_CalcBeforePositions(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, runLoop(a, strings.NewReader("3\n"), false))

	assert.Contains(t, out.String(), "[ERROR] positions not set")
}

func TestRunLoop_ClearConsole(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, runLoop(a, strings.NewReader("6\n"), false))

	assert.Contains(t, out.String(), "\033[H\033[2J")
	assert.Equal(t, 2, strings.Count(out.String(), "[INFO] 3: Calculate"))
}

func TestRunCalc(t *testing.T) {
	a, out := newTestApp(t)

	err := runCalc(a, []string{"--mode", "angle", "0,500", "40,500", "0,0,800,600"})
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "[INFO] Results:\nBest -> "))
	assert.Equal(t, core.ModeAngle, a.session.Mode())
	assert.Equal(t, core.Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}, a.session.Snapshot().Rect)
}

func TestRunCalc_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing target", []string{"0,500"}},
		{"too many", []string{"0,0", "1,1", "0,0,10,10", "extra"}},
		{"mode without value", []string{"0,0", "1,1", "--mode"}},
		{"bad mode", []string{"--mode=speed", "0,0", "1,1"}},
		{"bad point", []string{"0,0", "x,1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t)
			assert.Error(t, runCalc(a, tt.args))
		})
	}
}

func TestRunVersion(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, runVersion(a))

	assert.Equal(t, "[INFO] "+AppName+"\n[INFO] "+Version+"\n[INFO] "+BuildDate+"\n", out.String())
}

func TestRunVersion_DispatchError(t *testing.T) {
	a, out := newTestApp(t)

	bare, err := dispatcher.New(logging.NewDispatcherLogger(logger()))
	require.NoError(t, err)
	a.dispatcher = bare

	err = runVersion(a)
	assert.True(t, errors.Is(err, dispatcher.ErrUnknownCommand))
	assert.Empty(t, out.String())
}

func TestNewApp_InvalidPhysics(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("physics.gravity", -1)

	_, err := newApp(session.NewContext(), &bytes.Buffer{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "physics config")
}
