package modem_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"i4.energy/across/gsmlink/modem"
)

const (
	testICCID = "8944500102198304826"
	testIMSI  = "310150123456789"
	testTick  = 20 * time.Millisecond
)

// ScriptBuilder registers the modem's side of common exchanges on a
// TestTransport.
type ScriptBuilder struct {
	transport *modem.TestTransport
}

func NewScript(transport *modem.TestTransport) *ScriptBuilder {
	return &ScriptBuilder{transport: transport}
}

func (b *ScriptBuilder) Ping() *ScriptBuilder {
	b.transport.Reply("AT", "AT\r\nOK\r\n")
	return b
}

func (b *ScriptBuilder) ICCID() *ScriptBuilder {
	b.transport.Reply("AT+CCID", "AT+CCID\r\n"+testICCID+"\r\n\r\nOK\r\n")
	return b
}

func (b *ScriptBuilder) IMSI() *ScriptBuilder {
	b.transport.Reply("AT+CIMI", "AT+CIMI\r\n"+testIMSI+"\r\n\r\nOK\r\n")
	return b
}

func (b *ScriptBuilder) Connect() *ScriptBuilder {
	return b.Ping().ICCID().IMSI()
}

func (b *ScriptBuilder) OK(cmd string) *ScriptBuilder {
	b.transport.Reply(cmd, cmd+"\r\nOK\r\n")
	return b
}

func fastTimeouts() modem.Timeouts {
	return modem.Timeouts{
		Ping:      testTick,
		Query:     testTick,
		Status:    testTick,
		Bearer:    testTick,
		HTTP:      testTick,
		Data:      testTick,
		Action:    testTick,
		Read:      testTick,
		Terminate: testTick,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newModem builds a modem on transport without connecting it.
func newModem(t *testing.T, transport modem.Transport, configure ...func(*modem.ConfigBuilder)) *modem.Modem {
	t.Helper()

	b := modem.NewConfigBuilder().
		WithDialer(modem.TestDialer{Transport: transport}).
		WithLogger(testLogger()).
		WithTimeouts(fastTimeouts())
	for _, fn := range configure {
		fn(b)
	}

	config, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}
	m, err := modem.New(config)
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	return m
}

// connectedModem returns a modem that completed Connect on transport.
func connectedModem(t *testing.T, transport *modem.TestTransport, configure ...func(*modem.ConfigBuilder)) *modem.Modem {
	t.Helper()

	NewScript(transport).Connect()
	m := newModem(t, transport, configure...)
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect modem: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}
