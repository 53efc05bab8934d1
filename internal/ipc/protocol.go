// Package ipc implements the daemon's unix-socket control protocol: one text
// command per connection, one reply line back.
package ipc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind enumerates the protocol vocabulary.
type CommandKind int

const (
	CmdForward CommandKind = iota
	CmdBackward
	CmdJumpTo
	CmdStack
	CmdStatus
	CmdStop
)

// Command is one parsed request line.
type Command struct {
	Kind CommandKind

	// Target is the 1-based client position for CmdJumpTo.
	Target int
}

// ParseCommand parses a request line. A bare positive integer is a jump
// target; everything else must be a known keyword.
func ParseCommand(line string) (Command, error) {
	s := strings.TrimSpace(line)
	switch s {
	case "forward":
		return Command{Kind: CmdForward}, nil
	case "backward":
		return Command{Kind: CmdBackward}, nil
	case "stack":
		return Command{Kind: CmdStack}, nil
	case "status":
		return Command{Kind: CmdStatus}, nil
	case "stop":
		return Command{Kind: CmdStop}, nil
	}

	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return Command{Kind: CmdJumpTo, Target: n}, nil
	}

	return Command{}, fmt.Errorf("unknown command %q", s)
}

// String renders the command in wire form.
func (c Command) String() string {
	switch c.Kind {
	case CmdForward:
		return "forward"
	case CmdBackward:
		return "backward"
	case CmdJumpTo:
		return strconv.Itoa(c.Target)
	case CmdStack:
		return "stack"
	case CmdStatus:
		return "status"
	case CmdStop:
		return "stop"
	default:
		return fmt.Sprintf("unknown(%d)", int(c.Kind))
	}
}

// Status is the structured reply to the status command, polled by the
// overlay.
type Status struct {
	Running bool           `json:"running"`
	Windows []StatusWindow `json:"windows"`
}

// StatusWindow is one client entry in a status reply.
type StatusWindow struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

const (
	replyOK        = "OK"
	replyErrPrefix = "ERROR: "
)

func formatError(err error) string {
	return replyErrPrefix + err.Error()
}

func formatStatus(st Status) (string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsOK reports whether a reply line signals success.
func IsOK(reply string) bool {
	return strings.TrimSpace(reply) == replyOK
}

// IsError reports whether a reply line signals failure, returning the reason.
func IsError(reply string) (string, bool) {
	if strings.HasPrefix(reply, replyErrPrefix) {
		return strings.TrimPrefix(reply, replyErrPrefix), true
	}
	return "", false
}

// ParseStatus decodes a status reply line.
func ParseStatus(reply string) (Status, error) {
	var st Status
	if err := json.Unmarshal([]byte(reply), &st); err != nil {
		return Status{}, fmt.Errorf("malformed status reply: %w", err)
	}
	return st, nil
}
