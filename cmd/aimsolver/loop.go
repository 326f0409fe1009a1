package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/OCAP2/aimsolver/internal/dispatcher"
	"github.com/OCAP2/aimsolver/internal/session"
)

// keyAliases maps the single-key bindings to commands. Key 6 (clear
// console) never reaches the dispatcher.
var keyAliases = map[string]string{
	"1":    ":SOURCE:",
	"2":    ":TARGET:",
	"3":    ":CALC:",
	"4":    ":CLEAR:",
	"5":    ":MODE:",
	"?":    ":INFO:",
	"help": ":INFO:",
}

type lineKind int

const (
	lineEmpty lineKind = iota
	lineEvent
	lineClear
	lineQuit
)

type inputLine struct {
	kind  lineKind
	event dispatcher.Event
}

// parseLine turns "1 120,640", "calc" or ":MODE: angle" into an event.
func parseLine(line string) inputLine {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return inputLine{kind: lineEmpty}
	}

	word := strings.ToLower(fields[0])
	switch word {
	case "6", "cls":
		return inputLine{kind: lineClear}
	case "q", "quit", "exit":
		return inputLine{kind: lineQuit}
	}

	command, ok := keyAliases[word]
	if !ok {
		command = ":" + strings.Trim(strings.ToUpper(fields[0]), ":") + ":"
	}
	return inputLine{kind: lineEvent, event: newEvent(command, fields[1:]...)}
}

// runLoop reads commands until EOF or quit. State changes redraw the menu,
// clearing the screen first when attached to a terminal.
func runLoop(a *app, in io.Reader, interactive bool) error {
	a.console.Info("Waiting for input ...")
	a.console.Plain("")
	a.console.Menu(a.session.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := parseLine(scanner.Text())
		switch line.kind {
		case lineEmpty:
			continue
		case lineQuit:
			return nil
		case lineClear:
			a.console.Clear()
			a.console.Menu(a.session.Snapshot())
			continue
		}

		if !a.dispatcher.HasHandler(line.event.Command) {
			a.console.Error(fmt.Errorf("%w: %s", dispatcher.ErrUnknownCommand, line.event.Command))
			a.console.Plain("Commands: " + strings.Join(a.dispatcher.Commands(), " "))
			continue
		}

		out, err := a.dispatcher.Dispatch(line.event)
		if err != nil {
			a.console.Error(err)
			continue
		}
		if _, ok := out.(session.Snapshot); ok && interactive {
			a.console.Clear()
		}
		a.console.Value(out)
	}
	return scanner.Err()
}
