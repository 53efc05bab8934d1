package input

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingCloser signals when Close is called.
type recordingCloser struct {
	closed chan struct{}
}

func newRecordingCloser() *recordingCloser {
	return &recordingCloser{closed: make(chan struct{})}
}

func (c *recordingCloser) Close() error {
	close(c.closed)
	return nil
}

func TestCloseOnCancelUnblocksRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dev := newRecordingCloser()
	readDone := make(chan struct{})

	go closeOnCancel(ctx, readDone, dev)

	// Shutdown while the read loop is still blocked in the kernel.
	cancel()

	select {
	case <-dev.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("device was not closed on cancellation")
	}
}

func TestCloseOnCancelClosesAfterLoopExit(t *testing.T) {
	dev := newRecordingCloser()
	readDone := make(chan struct{})

	go closeOnCancel(context.Background(), readDone, dev)

	// The read loop exits on its own (device error); the watcher still owns
	// the close.
	close(readDone)

	select {
	case <-dev.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("device was not closed after the read loop exited")
	}
}

func TestRunStopsOnCancelDuringRetry(t *testing.T) {
	l := NewListener(DeviceMouse, "/dev/input/event-does-not-exist", Binding{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	// Give the listener time to fail its open and enter backoff.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}
