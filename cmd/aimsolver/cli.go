package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OCAP2/aimsolver/internal/dispatcher"
)

var errCalcUsage = errors.New("usage: aimsolver calc [--mode angle|velocity] x1,y1 x2,y2 [left,top,right,bottom]")

// runCalc solves once for positions given on the command line and prints
// the report.
func runCalc(a *app, args []string) error {
	var mode string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--mode" || arg == "-m":
			if i+1 >= len(args) {
				return fmt.Errorf("%s needs a value: %w", arg, errCalcUsage)
			}
			i++
			mode = args[i]
		case strings.HasPrefix(arg, "--mode="):
			mode = strings.TrimPrefix(arg, "--mode=")
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) < 2 || len(positional) > 3 {
		return errCalcUsage
	}

	var events []dispatcher.Event
	if mode != "" {
		events = append(events, newEvent(":MODE:", mode))
	}
	if len(positional) == 3 {
		events = append(events, newEvent(":RECT:", positional[2]))
	}
	events = append(events,
		newEvent(":SOURCE:", positional[0]),
		newEvent(":TARGET:", positional[1]),
	)

	for _, e := range events {
		if _, err := a.dispatcher.Dispatch(e); err != nil {
			return err
		}
	}

	out, err := a.dispatcher.Dispatch(newEvent(":CALC:"))
	if err != nil {
		return err
	}
	a.console.Value(out)
	return nil
}

// runVersion prints the application name, version and build date.
func runVersion(a *app) error {
	out, err := a.dispatcher.Dispatch(newEvent(":VERSION:"))
	if err != nil {
		return err
	}
	a.console.Value(out)
	return nil
}

func newEvent(command string, args ...string) dispatcher.Event {
	return dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	}
}
