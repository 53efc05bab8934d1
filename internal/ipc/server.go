package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/evemux/evemux/internal/logger"
)

// ErrSocketInUse is fatal at startup: another daemon instance answered on
// the control socket.
var ErrSocketInUse = errors.New("control socket already in use")

// Handler executes parsed commands against the daemon. Implementations
// serialize internally; the server calls them from per-connection goroutines.
type Handler interface {
	Forward(ctx context.Context) error
	Backward(ctx context.Context) error
	JumpTo(ctx context.Context, target int) error
	Stack(ctx context.Context) error
	Status(ctx context.Context) (Status, error)
	Shutdown()
}

// Server accepts control connections on the daemon's unix socket.
type Server struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    Handler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// NewServer creates a server bound to the per-user socket path.
func NewServer(handler Handler) *Server {
	return &Server{
		socketPath: SocketPath(),
		handler:    handler,
	}
}

// SocketPath returns the fixed per-user control socket path.
func SocketPath() string {
	name := "unknown"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return filepath.Join("/tmp", fmt.Sprintf("evemux-%s.sock", name))
}

// Start probes for a live daemon, clears any stale socket file, binds, and
// begins accepting connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := os.Stat(s.socketPath); err == nil {
		if serverAlive(s.socketPath) {
			return fmt.Errorf("%w: %s", ErrSocketInUse, s.socketPath)
		}
		logger.With("ipc").Warnf("removing stale socket %s", s.socketPath)
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to bind control socket: %w", err)
	}

	// Owner-only: the socket accepts unauthenticated commands.
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("Control socket listening at %s", s.socketPath)
	return nil
}

// serverAlive reports whether a daemon answers a status probe on the socket.
func serverAlive(path string) bool {
	conn, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err != nil {
		return false
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(time.Second)); err != nil {
		return false
	}
	if _, err := fmt.Fprintln(conn, Command{Kind: CmdStatus}); err != nil {
		return false
	}
	_, err = bufio.NewReader(conn).ReadString('\n')
	return err == nil
}

// Stop closes the listener, waits for in-flight connections, and removes the
// socket file.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		logger.With("ipc").Warnf("failed to remove socket: %v", err)
	}

	logger.Info("Control socket closed")
}

func (s *Server) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.With("ipc").Errorf("accept failed: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

// handleConnection serves one request line and one reply line.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		logger.With("ipc").Warnf("failed to set connection deadline: %v", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		logger.With("ipc").Debugf("connection closed before command: %v", err)
		return
	}

	reply := s.dispatch(ctx, line)
	if _, err := fmt.Fprintln(conn, reply); err != nil {
		logger.With("ipc").Errorf("failed to send reply: %v", err)
	}
}

func (s *Server) dispatch(ctx context.Context, line string) string {
	cmd, err := ParseCommand(line)
	if err != nil {
		return formatError(err)
	}

	logger.With("ipc").Debugf("command: %s", cmd)

	switch cmd.Kind {
	case CmdForward:
		err = s.handler.Forward(ctx)
	case CmdBackward:
		err = s.handler.Backward(ctx)
	case CmdJumpTo:
		err = s.handler.JumpTo(ctx, cmd.Target)
	case CmdStack:
		err = s.handler.Stack(ctx)
	case CmdStatus:
		st, serr := s.handler.Status(ctx)
		if serr != nil {
			return formatError(serr)
		}
		reply, ferr := formatStatus(st)
		if ferr != nil {
			return formatError(ferr)
		}
		return reply
	case CmdStop:
		// Reply before the daemon tears the socket down.
		defer s.handler.Shutdown()
	}

	if err != nil {
		return formatError(err)
	}
	return replyOK
}
