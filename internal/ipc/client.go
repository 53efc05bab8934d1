package ipc

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client sends single commands to a running daemon. A fresh connection is
// opened per request; the protocol is one line each way.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the per-user socket path.
func NewClient() *Client {
	return &Client{
		socketPath: SocketPath(),
		timeout:    5 * time.Second,
	}
}

// Send delivers one command and returns the raw reply line.
func (c *Client) Send(cmd Command) (string, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return "", fmt.Errorf("daemon not running (start it with: evemux daemon): %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}

	if _, err := fmt.Fprintln(conn, cmd); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return strings.TrimRight(reply, "\n"), nil
}

// Status queries the daemon's structured status.
func (c *Client) Status() (Status, error) {
	reply, err := c.Send(Command{Kind: CmdStatus})
	if err != nil {
		return Status{}, err
	}
	if reason, isErr := IsError(reply); isErr {
		return Status{}, fmt.Errorf("daemon error: %s", reason)
	}
	return ParseStatus(reply)
}

// Running reports whether a daemon answers on the control socket.
func (c *Client) Running() bool {
	_, err := c.Status()
	return err == nil
}
