package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Result is the structured outcome of one command/response exchange.
type Result struct {
	// Err is the text of the last unmatched information line (without its
	// leading '+'), or ERROR, that was not folded into a terminal status.
	Err string
	// Status is set only when a terminal marker (OK or >) was seen. It holds
	// the pending Err at that moment, otherwise the marker itself.
	Status string
	// Items are the values of the exchange in order: plain lines as a whole,
	// matching information lines split on ','.
	Items []string
	// Info holds only the values taken from information lines that matched
	// the sent command.
	Info []string
	// Lines are the trimmed, non-empty raw lines. Nil when no data was
	// received at all.
	Lines []string
	// Raw is the exchange exactly as received, for payloads that must not
	// be trimmed or split.
	Raw []byte
}

// Empty reports whether the result was built from an absent buffer.
func (r *Result) Empty() bool {
	return r.Lines == nil
}

// Item returns the i-th item, or "" when out of range.
func (r *Result) Item(i int) string {
	if i < 0 || i >= len(r.Items) {
		return ""
	}
	return r.Items[i]
}

// Normalize reduces a command or response mnemonic to a comparable form:
// any '=' parameter list and a trailing '?' are dropped, a '+' mnemonic
// gets the AT prefix and a bare extended name such as CSQ gets AT+.
// Normalize is idempotent.
func Normalize(cmd string) string {
	c := strings.TrimSpace(cmd)
	if i := strings.IndexByte(c, '='); i >= 0 {
		c = c[:i]
	}
	c = strings.TrimSuffix(c, "?")
	switch {
	case c == "", strings.HasPrefix(c, Prefix):
	case strings.HasPrefix(c, "+"):
		c = Prefix + c
	default:
		c = Prefix + "+" + c
	}
	return c
}

// Parse interprets the bytes received in reply to sent.
//
// Information lines are correlated to the command only by mnemonic, so an
// unsolicited notification that shares the mnemonic of the last command is
// taken as that command's payload. Besides unmatched information lines, a
// bare ERROR line also sets Err.
func Parse(raw []byte, sent string) Result {
	var r Result
	if raw == nil {
		return r
	}
	r.Lines = []string{}
	r.Raw = raw
	cmd := Normalize(sent)

	// The buffer can hold the whole input, so no line is ever too long.
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 4096), max(len(raw)+1, 4096))
	scanner.Split(Splitter)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.Lines = append(r.Lines, line)

		switch Classify(line) {
		case TypeTerminal:
			if r.Err != "" {
				r.Status = r.Err
			} else {
				r.Status = line
			}
			r.Err = ""

		case TypeError:
			r.Err = line
			r.Items = append(r.Items, line)

		case TypeInfo:
			mnemonic, payload, _ := strings.Cut(line, ":")
			if Normalize(mnemonic) != cmd {
				r.Err = line[1:]
				continue
			}
			payload = strings.TrimSpace(payload)
			if payload == "" {
				continue
			}
			for _, v := range strings.Split(payload, ",") {
				v = strings.TrimSpace(v)
				r.Items = append(r.Items, v)
				r.Info = append(r.Info, v)
			}

		case TypeData:
			r.Items = append(r.Items, line)
		}
	}
	if err := scanner.Err(); err != nil {
		r.Err = err.Error()
	}
	return r
}
