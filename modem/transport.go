package modem

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

//go:generate go tool mockgen -source=transport.go -destination=transport_mock.go -package=modem

// DefaultBaudRate is used by SerialDialer when neither BaudRate nor Mode is set.
const DefaultBaudRate = 9600

// Transport represents an established, bidirectional byte stream to a GSM modem.
//
// A Transport is assumed to be already connected and ready for use. Drain
// blocks until everything written has been transmitted. A go.bug.st/serial
// Port satisfies this interface.
type Transport interface {
	io.ReadWriteCloser
	Drain() error
}

// Dialer opens a Transport to a GSM modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be used
// during Connect only.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// PortDiscoverer resolves a serial device path when none is configured.
type PortDiscoverer func() (string, error)

// SerialDialer opens a GSM modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB0 or /dev/ttyMFD1.
	PortName string
	// BaudRate is used when Mode is nil. Defaults to DefaultBaudRate.
	BaudRate int
	// Mode overrides the full line settings.
	Mode *serial.Mode
	// Discover is consulted when PortName is empty.
	Discover PortDiscoverer
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := d.PortName
	if name == "" {
		if d.Discover == nil {
			return nil, ErrNoPortName
		}
		found, err := d.Discover()
		if err != nil {
			return nil, fmt.Errorf("gsm: discover serial port: %w", err)
		}
		name = found
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud <= 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("gsm: open %s: %w", name, err)
	}
	return port, nil
}

// DiscoverPort returns the first USB serial port reported by the system,
// falling back to the first serial port of any kind.
func DiscoverPort() (string, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		for _, p := range details {
			if p.IsUSB {
				return p.Name, nil
			}
		}
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found")
	}
	return ports[0], nil
}
