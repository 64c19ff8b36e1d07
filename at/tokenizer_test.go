package at_test

import (
	"bufio"
	"strings"
	"testing"

	"i4.energy/across/gsmlink/at"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple AT command response",
			input:    "AT+CSQ\r+CSQ: 15,99\rOK\r",
			expected: []string{"AT+CSQ", "+CSQ: 15,99", "OK"},
		},
		{
			name:     "CRLF terminated response keeps line feeds for trimming",
			input:    "AT+CSQ\r\n+CSQ: 15,99\r\nOK\r\n",
			expected: []string{"AT+CSQ", "\n+CSQ: 15,99", "\nOK", "\n"},
		},
		{
			name:     "AT command with error",
			input:    "AT+CPIN?\r+CME ERROR: 10\r",
			expected: []string{"AT+CPIN?", "+CME ERROR: 10"},
		},
		{
			name:     "Prompt line",
			input:    "AT+HTTPDATA=5,1000\r> ",
			expected: []string{"AT+HTTPDATA=5,1000", "> "},
		},
		{
			name:     "Empty lines handling",
			input:    "\r\rAT\rOK\r\r",
			expected: []string{"", "", "AT", "OK", ""},
		},
		// EOF scenarios - testing atEOF functionality
		{
			name:     "Incomplete response at EOF",
			input:    "AT+CSQ\r+CSQ: 15,99",
			expected: []string{"AT+CSQ", "+CSQ: 15,99"},
		},
		{
			name:     "Command without CR at EOF",
			input:    "AT+CCID",
			expected: []string{"AT+CCID"},
		},
		{
			name:     "HTTP read cut off mid-stream at EOF",
			input:    "AT+HTTPREAD=0,101\r+HTTPREAD: 101\rhello wor",
			expected: []string{"AT+HTTPREAD=0,101", "+HTTPREAD: 101", "hello wor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(at.Splitter)

			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}

			if err := scanner.Err(); err != nil {
				t.Fatalf("Scanner error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d.\nExpected: %q\nGot: %q",
					len(tt.expected), len(tokens), tt.expected, tokens)
			}

			for i, expected := range tt.expected {
				if tokens[i] != expected {
					t.Errorf("Token %d: expected %q, got %q", i, expected, tokens[i])
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.LineType
	}{
		// Terminal markers
		{name: "OK response", input: "OK", expected: at.TypeTerminal},
		{name: "Prompt", input: ">", expected: at.TypeTerminal},

		// Errors
		{name: "ERROR response", input: "ERROR", expected: at.TypeError},

		// Information responses
		{name: "Signal quality response", input: "+CSQ: 15,99", expected: at.TypeInfo},
		{name: "CME Error", input: "+CME ERROR: 30", expected: at.TypeInfo},
		{name: "HTTP action", input: "+HTTPACTION: 0,200,1024", expected: at.TypeInfo},

		// Data
		{name: "Echoed command", input: "AT+CSQ", expected: at.TypeData},
		{name: "ICCID value", input: "8944500102198304826", expected: at.TypeData},
		{name: "Download marker", input: "DOWNLOAD", expected: at.TypeData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := at.Classify(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v for input %q", tt.expected, result, tt.input)
			}
		})
	}
}
