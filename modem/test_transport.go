package modem

import (
	"context"
	"io"
	"strings"
	"sync"
)

// TestTransport is a test helper that simulates a modem behind a blocking
// transport. Replies registered with Reply are queued for reading as soon as
// the matching command is written, the way a real modem answers after the
// command line is received.
type TestTransport struct {
	mu       sync.Mutex
	readChan chan []byte
	closed   bool
	replies  map[string][]string
	writes   []string
	drainErr error
	pending  []byte
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
		replies:  make(map[string][]string),
	}
}

// Reply queues responses for a command. cmd is matched against the written
// bytes without the trailing CR. Each write of cmd consumes one response;
// when only one remains it is reused for every later write.
func (t *TestTransport) Reply(cmd string, responses ...string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[cmd] = append(t.replies[cmd], responses...)
	return t
}

// FailDrain makes every following Drain return err.
func (t *TestTransport) FailDrain(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainErr = err
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}

	cmd := strings.TrimSuffix(string(p), "\r")
	t.writes = append(t.writes, cmd)

	queue := t.replies[cmd]
	if len(queue) == 0 {
		return len(p), nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		t.replies[cmd] = queue[1:]
	}
	if resp != "" {
		t.readChan <- []byte(resp)
	}
	return len(p), nil
}

func (t *TestTransport) Drain() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drainErr
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	if len(t.pending) == 0 {
		data, ok := <-t.readChan
		if !ok {
			return 0, io.EOF
		}
		t.pending = data
	}
	n = copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates unsolicited output from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Writes returns every command written so far, without trailing CR.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Count returns how many times cmd was written.
func (t *TestTransport) Count(cmd string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, w := range t.writes {
		if w == cmd {
			n++
		}
	}
	return n
}

// TestDialer hands out a fixed Transport.
type TestDialer struct {
	Transport Transport
	Err       error
}

func (d TestDialer) Dial(ctx context.Context) (Transport, error) {
	return d.Transport, d.Err
}
