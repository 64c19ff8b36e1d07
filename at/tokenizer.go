package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter is used for tokenizing AT command modem responses. It uses
// the signature of bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// It splits the input on carriage returns. Line feeds are left in the token
// and are expected to be removed by the caller when it trims each line, so
// both "\r" and "\r\n" terminated responses tokenize the same way.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, CR[0]); i >= 0 {
		return i + 1, data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Classify identifies the nature of a trimmed modem output line
func Classify(line string) LineType {
	switch line {
	case OK, Prompt:
		return TypeTerminal
	case ERROR:
		return TypeError
	}

	if strings.HasPrefix(line, "+") {
		return TypeInfo
	}
	return TypeData
}
