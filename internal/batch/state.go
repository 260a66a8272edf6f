package batch

import (
	"errors"
	"fmt"
	"strings"
)

// State of a Controller. Only Running consumes work.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Command is an inbound control message.
type Command string

const (
	CmdStart  Command = "START"
	CmdResume Command = "RESUME"
	CmdPause  Command = "PAUSE"
	CmdStop   Command = "STOP"
)

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ParseCommand accepts commands in any case.
func ParseCommand(raw string) (Command, error) {
	cmd := Command(strings.ToUpper(strings.TrimSpace(raw)))
	switch cmd {
	case CmdStart, CmdResume, CmdPause, CmdStop:
		return cmd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
}

// transition returns the state cmd leads to from s.
func transition(s State, cmd Command) (State, error) {
	switch cmd {
	case CmdStart, CmdResume:
		if s == StateIdle || s == StatePaused {
			return StateRunning, nil
		}
	case CmdPause:
		if s == StateRunning {
			return StatePaused, nil
		}
	case CmdStop:
		if s == StateRunning || s == StatePaused {
			return StateStopped, nil
		}
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownCommand, string(cmd))
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, cmd, s)
}
