package modem

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/gsmlink/at"
)

// Modem represents a GSM cellular modem that communicates via AT commands
// over a serial transport. Commands are issued one at a time: a call made
// while another command is waiting for its response fails with ErrBusy.
type Modem struct {
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger

	mu sync.Mutex
	// state is the connection lifecycle position
	state ConnectionState
	// transport provides the physical connection to the modem
	transport Transport
	// seq serialises commands on the transport
	seq *sequencer
	// identity is set once after successful identification
	identity *DeviceInfo
	// closed indicates if the modem has been shut down
	closed bool

	// httpActive guards the modem's single HTTP context
	httpActive atomic.Bool
}

// New creates a Modem from the given configuration. No I/O is performed
// until Connect is called.
func New(config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	return &Modem{
		config: config,
		logger: config.logger.With("component", "modem"),
		state:  Disconnected,
	}, nil
}

// State returns the current connection state.
func (m *Modem) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Modem) setState(s ConnectionState) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	m.mu.Unlock()
	if prev != s {
		m.logger.Info("Connection state changed", "from", prev.String(), "to", s.String())
	}
}

// Identity returns the device identity read during Connect.
func (m *Modem) Identity() (DeviceInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return DeviceInfo{}, false
	}
	return *m.identity, true
}

// Connect opens the transport, waits for the modem to answer a ping and
// reads its identity. The ping is retried at most MaxRetries times; after
// that Connect fails with ErrConnectionExhausted.
func (m *Modem) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrAlreadyClosed
	}
	if m.state != Disconnected && m.state != Failed {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	prev := m.state
	m.state = Connecting
	m.mu.Unlock()

	m.logger.Info("Connection state changed", "from", prev.String(), "to", Connecting.String())
	m.logger.Info("Opening connection")

	transport, err := m.config.dialer.Dial(ctx)
	if err != nil {
		m.setState(Failed)
		return &TransportError{Op: "open", Err: err}
	}
	if transport == nil {
		m.setState(Failed)
		return ErrNotInitialized
	}

	seq := newSequencer(transport, m.logger)
	go seq.listen()

	m.mu.Lock()
	m.transport = transport
	m.seq = seq
	m.mu.Unlock()

	if err := m.ping(ctx); err != nil {
		m.fail()
		return err
	}

	m.setState(Identifying)
	info, err := m.DeviceInfo(ctx)
	if err != nil {
		m.fail()
		return fmt.Errorf("identify modem: %w", err)
	}

	m.mu.Lock()
	m.identity = &info
	m.mu.Unlock()

	m.setState(Connected)
	m.logger.Info("Connected to GSM network", "iccid", info.ICCID, "imsi", info.IMSI)
	return nil
}

// ping sends AT until the modem answers OK or the attempts run out.
func (m *Modem) ping(ctx context.Context) error {
	seq := m.sequencer()
	for attempt := 1; ; attempt++ {
		res, err := seq.exec(ctx, at.Cmd(at.CmdPing, m.config.timeouts.Ping))
		if err == nil && res.Status == at.OK {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= m.config.maxRetries {
			m.logger.Error("Failed to connect", "attempts", attempt, "error", err)
			return fmt.Errorf("%w: no answer after %d attempts", ErrConnectionExhausted, attempt)
		}
		m.logger.Warn("Modem not answering, retrying", "attempt", attempt, "error", err)

		if m.config.retryDelay > 0 {
			select {
			case <-time.After(m.config.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// fail marks the connection as failed and releases the transport.
func (m *Modem) fail() {
	m.mu.Lock()
	t := m.transport
	m.transport = nil
	m.seq = nil
	m.mu.Unlock()

	if t != nil {
		if err := t.Close(); err != nil {
			m.logger.Warn("Failed to close transport", "error", err)
		}
	}
	m.setState(Failed)
}

func (m *Modem) sequencer() *sequencer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// exec issues a single command on the connected transport.
func (m *Modem) exec(ctx context.Context, cmd at.Command) (*at.Result, error) {
	m.mu.Lock()
	closed, seq := m.closed, m.seq
	m.mu.Unlock()

	if closed {
		return nil, ErrAlreadyClosed
	}
	if seq == nil {
		return nil, ErrNotInitialized
	}
	return seq.exec(ctx, cmd)
}

// sequence issues an ordered list of commands on the connected transport.
func (m *Modem) sequence(ctx context.Context, timeout time.Duration, cmds ...at.Command) (*at.Result, error) {
	m.mu.Lock()
	closed, seq := m.closed, m.seq
	m.mu.Unlock()

	if closed {
		return nil, ErrAlreadyClosed
	}
	if seq == nil {
		return nil, ErrNotInitialized
	}
	return seq.sequence(ctx, timeout, cmds...)
}

// Close shuts down the modem and releases the transport. The read loop
// stops once the transport is closed. After Close the modem cannot be reused.
func (m *Modem) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrAlreadyClosed
	}
	m.closed = true
	t := m.transport
	m.transport = nil
	m.seq = nil
	m.state = Disconnected
	m.mu.Unlock()

	m.logger.Info("Closing connection")
	if t != nil {
		return t.Close()
	}
	return nil
}

func (m *Modem) String() string {
	return fmt.Sprintf("Modem{state: %s}", m.State())
}
