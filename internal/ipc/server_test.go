package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mockHandler records dispatched commands.
type mockHandler struct {
	forwardCalled  bool
	backwardCalled bool
	jumpTarget     int
	stackCalled    bool
	shutdownCalled chan struct{}

	forwardErr error
	status     Status
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		shutdownCalled: make(chan struct{}),
		status:         Status{Running: true},
	}
}

func (m *mockHandler) Forward(ctx context.Context) error {
	m.forwardCalled = true
	return m.forwardErr
}

func (m *mockHandler) Backward(ctx context.Context) error {
	m.backwardCalled = true
	return nil
}

func (m *mockHandler) JumpTo(ctx context.Context, target int) error {
	m.jumpTarget = target
	return nil
}

func (m *mockHandler) Stack(ctx context.Context) error {
	m.stackCalled = true
	return nil
}

func (m *mockHandler) Status(ctx context.Context) (Status, error) {
	return m.status, nil
}

func (m *mockHandler) Shutdown() {
	close(m.shutdownCalled)
}

func testServer(t *testing.T, handler Handler) (*Server, *Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evemux.sock")
	server := &Server{socketPath: path, handler: handler}
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(server.Stop)

	client := &Client{socketPath: path, timeout: 2 * time.Second}
	return server, client
}

func TestServerDispatchesCommands(t *testing.T) {
	handler := newMockHandler()
	_, client := testServer(t, handler)

	reply, err := client.Send(Command{Kind: CmdForward})
	if err != nil {
		t.Fatalf("Send(forward) error = %v", err)
	}
	if !IsOK(reply) {
		t.Errorf("Send(forward) reply = %q, want OK", reply)
	}
	if !handler.forwardCalled {
		t.Error("Forward was not dispatched")
	}

	if _, err := client.Send(Command{Kind: CmdJumpTo, Target: 4}); err != nil {
		t.Fatalf("Send(4) error = %v", err)
	}
	if handler.jumpTarget != 4 {
		t.Errorf("jump target = %d, want 4", handler.jumpTarget)
	}

	if _, err := client.Send(Command{Kind: CmdBackward}); err != nil {
		t.Fatalf("Send(backward) error = %v", err)
	}
	if _, err := client.Send(Command{Kind: CmdStack}); err != nil {
		t.Fatalf("Send(stack) error = %v", err)
	}
	if !handler.backwardCalled || !handler.stackCalled {
		t.Error("backward/stack were not dispatched")
	}
}

func TestServerReportsHandlerErrors(t *testing.T) {
	handler := newMockHandler()
	handler.forwardErr = errors.New("no clients")
	_, client := testServer(t, handler)

	reply, err := client.Send(Command{Kind: CmdForward})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	reason, isErr := IsError(reply)
	if !isErr {
		t.Fatalf("reply = %q, want error reply", reply)
	}
	if reason != "no clients" {
		t.Errorf("error reason = %q", reason)
	}
}

func TestServerRejectsUnknownCommand(t *testing.T) {
	handler := newMockHandler()
	_, client := testServer(t, handler)

	// Raw garbage straight down the wire.
	reply, err := client.Send(Command{Kind: CommandKind(99)})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, isErr := IsError(reply); !isErr {
		t.Errorf("reply = %q, want error reply", reply)
	}
}

func TestServerStatusRoundTrip(t *testing.T) {
	handler := newMockHandler()
	handler.status = Status{
		Running: true,
		Windows: []StatusWindow{{Name: "Alpha", Active: true}},
	}
	_, client := testServer(t, handler)

	st, err := client.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Running || len(st.Windows) != 1 || st.Windows[0].Name != "Alpha" {
		t.Errorf("Status() = %+v", st)
	}
	if !client.Running() {
		t.Error("Running() = false with live server")
	}
}

func TestStopCommandRepliesBeforeShutdown(t *testing.T) {
	handler := newMockHandler()
	_, client := testServer(t, handler)

	reply, err := client.Send(Command{Kind: CmdStop})
	if err != nil {
		t.Fatalf("Send(stop) error = %v", err)
	}
	if !IsOK(reply) {
		t.Errorf("Send(stop) reply = %q, want OK", reply)
	}

	select {
	case <-handler.shutdownCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown was not invoked")
	}
}

func TestStartRefusesSecondDaemon(t *testing.T) {
	handler := newMockHandler()
	server, _ := testServer(t, handler)

	second := &Server{socketPath: server.socketPath, handler: newMockHandler()}
	err := second.Start()
	if !errors.Is(err, ErrSocketInUse) {
		t.Fatalf("second Start() error = %v, want ErrSocketInUse", err)
	}
}

func TestStartRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evemux.sock")

	// A leftover socket file with nothing listening behind it.
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	server := &Server{socketPath: path, handler: newMockHandler()}
	if err := server.Start(); err != nil {
		t.Fatalf("Start() over stale socket error = %v", err)
	}
	defer server.Stop()

	client := &Client{socketPath: path, timeout: 2 * time.Second}
	if !client.Running() {
		t.Error("daemon not reachable after stale socket cleanup")
	}
}

func TestStopRemovesSocketFile(t *testing.T) {
	handler := newMockHandler()
	server, client := testServer(t, handler)

	server.Stop()

	if _, err := os.Stat(server.socketPath); !os.IsNotExist(err) {
		t.Errorf("socket file still present after Stop(): stat err = %v", err)
	}
	if client.Running() {
		t.Error("Running() = true after Stop()")
	}
}

func TestSocketPermissions(t *testing.T) {
	handler := newMockHandler()
	server, _ := testServer(t, handler)

	info, err := os.Stat(server.socketPath)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket permissions = %o, want 0600", perm)
	}
}
