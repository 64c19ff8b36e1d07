package modem

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has not been successfully connected.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrAlreadyConnected is returned when Connect is called while a
	// connection is established or being established.
	ErrAlreadyConnected = errors.New("modem already connected")

	// ErrBusy is returned when a command is issued while another command is
	// still waiting for its response. Only one command may be in flight.
	ErrBusy = errors.New("command already in flight")

	// ErrConnectionExhausted is returned by Connect when the modem did not
	// answer the ping within the configured number of attempts.
	ErrConnectionExhausted = errors.New("connection attempts exhausted")

	// ErrNoValue is returned by query operations when the response did not
	// carry the expected value.
	ErrNoValue = errors.New("response carries no value")

	// ErrHTTPSessionActive is returned when an HTTP request is started while
	// another one holds the modem's single HTTP context.
	ErrHTTPSessionActive = errors.New("HTTP session already active")

	// ErrMissingBody is returned when a POST request is made without data.
	ErrMissingBody = errors.New("POST request requires a body")

	// ErrNoPortName is returned by SerialDialer when no port name is set and
	// no discoverer is available to find one.
	ErrNoPortName = errors.New("gsm: serial port name is required")
)

// TransportError reports a failure of the underlying byte transport. Op
// names the failed operation: open, write, drain or read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError carries an error reported by the device in its response.
// Status holds the terminal status observed alongside it, if any.
type ProtocolError struct {
	Command string
	Text    string
	Status  string
}

func (e *ProtocolError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: device error %q (status %q)", e.Command, e.Text, e.Status)
	}
	return fmt.Sprintf("%s: device error %q", e.Command, e.Text)
}

// SequenceAbortedError reports that a step of a command sequence failed and
// the remaining steps were skipped.
type SequenceAbortedError struct {
	Step    int
	Command string
	Err     error
}

func (e *SequenceAbortedError) Error() string {
	return fmt.Sprintf("sequence aborted at step %d (%s): %v", e.Step, e.Command, e.Err)
}

func (e *SequenceAbortedError) Unwrap() error { return e.Err }

// HTTPSessionError reports an HTTP request the modem did not complete with
// a 200 status and a well-formed body.
type HTTPSessionError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *HTTPSessionError) Error() string {
	msg := "http session: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPSessionError) Unwrap() error { return e.Err }
