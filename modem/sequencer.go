package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"i4.energy/across/gsmlink/at"
)

// sequencer issues one command at a time on a Transport and interprets
// whatever the modem sent back once the command's timeout has elapsed.
//
// Completion is time based: the buffer is not inspected before the timeout
// expires, even if a terminal marker arrived earlier, and never before the
// written bytes have been drained.
type sequencer struct {
	transport Transport
	logger    *slog.Logger
	inflight  *semaphore.Weighted

	mu      sync.Mutex
	buf     []byte
	readErr error
}

func newSequencer(t Transport, logger *slog.Logger) *sequencer {
	return &sequencer{
		transport: t,
		logger:    logger,
		inflight:  semaphore.NewWeighted(1),
	}
}

// notify records data received from the transport for the current exchange.
func (s *sequencer) notify(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
}

// notifyErr records the latest transport read error.
func (s *sequencer) notifyErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// reset starts a new exchange. A read error is kept: the read loop has
// stopped and every later exchange fails with it.
func (s *sequencer) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}

func (s *sequencer) snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return nil, s.readErr
	}
	return append([]byte(nil), s.buf...), s.readErr
}

// listen is the read loop feeding the sequencer. It runs until the transport
// returns an error, which is recorded for the exchange in progress.
func (s *sequencer) listen() {
	buf := make([]byte, 1024)
	for {
		n, err := s.transport.Read(buf)
		if n > 0 {
			s.notify(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("Transport read failed", "error", err)
			}
			s.notifyErr(err)
			return
		}
	}
}

// exec writes one command, waits for it to drain and for its timeout to
// elapse, and parses the response. It fails fast with ErrBusy when another
// command is in flight.
func (s *sequencer) exec(ctx context.Context, cmd at.Command) (*at.Result, error) {
	if !s.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer s.inflight.Release(1)

	s.reset()
	s.logger.Debug("Writing command", "command", cmd.String(), "timeout", cmd.Timeout)

	if _, err := s.transport.Write(cmd.Wire()); err != nil {
		return nil, &TransportError{Op: "write", Err: err}
	}
	if err := s.transport.Drain(); err != nil {
		return nil, &TransportError{Op: "drain", Err: err}
	}

	timer := time.NewTimer(cmd.Timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, fmt.Errorf("command %s: %w", cmd, ctx.Err())
	}

	raw, readErr := s.snapshot()
	res := at.Parse(raw, cmd.Text)
	s.logger.Debug("Parsed response", "command", cmd.String(), "lines", res.Lines, "status", res.Status)

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return &res, &TransportError{Op: "read", Err: readErr}
	}
	if res.Err != "" {
		return &res, &ProtocolError{Command: cmd.String(), Text: res.Err, Status: res.Status}
	}
	return &res, nil
}

// sequence issues cmds in order. A command without its own timeout reuses
// the running timeout, which starts at timeout and is replaced by every
// explicit override. The first failing step aborts the sequence.
func (s *sequencer) sequence(ctx context.Context, timeout time.Duration, cmds ...at.Command) (*at.Result, error) {
	var last *at.Result
	for i, cmd := range cmds {
		if cmd.Timeout > 0 {
			timeout = cmd.Timeout
		}
		cmd.Timeout = timeout

		res, err := s.exec(ctx, cmd)
		if err != nil {
			return res, &SequenceAbortedError{Step: i, Command: cmd.String(), Err: err}
		}
		last = res
	}
	return last, nil
}
