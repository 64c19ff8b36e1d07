package at

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Command is a single command line sent to the modem together with the time
// the sequencer waits before reading the response. A zero Timeout means the
// caller's running timeout applies.
type Command struct {
	Text    string
	Timeout time.Duration
}

// Cmd is shorthand for building a Command.
func Cmd(text string, timeout time.Duration) Command {
	return Command{Text: text, Timeout: timeout}
}

// Wire returns the bytes put on the transport, always terminated by CR.
func (c Command) Wire() []byte {
	if strings.HasSuffix(c.Text, CR) {
		return []byte(c.Text)
	}
	return []byte(c.Text + CR)
}

func (c Command) String() string {
	return strings.TrimSuffix(c.Text, CR)
}

// ErrInvalidArgument is returned by CheckArg for a string that cannot be
// sent as a quoted argument. AT has no escape for '"'.
var ErrInvalidArgument = errors.New("at: argument contains a quote or line terminator")

// CheckArg reports whether s can be passed to Set as a quoted argument.
func CheckArg(s string) error {
	if strings.ContainsAny(s, `"`+CR+"\n"+CtrlZ) {
		return fmt.Errorf("%w: %q", ErrInvalidArgument, s)
	}
	return nil
}

// Set formats a set command such as AT+HTTPPARA="URL","http://x". The
// mnemonic must include its leading '+'. Strings are quoted, integers are
// written bare. String arguments must pass CheckArg.
func Set(mnemonic string, args ...any) string {
	line := Prefix + mnemonic
	if len(args) > 0 {
		line += "=" + quotes(args)
	}
	return line
}

func quote(v any) string {
	switch v := v.(type) {
	case string:
		return `"` + v + `"`
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		panic(fmt.Sprintf("at: unsupported argument type %T", v))
	}
}

func quotes(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = quote(arg)
	}
	return strings.Join(parts, ",")
}
