package at_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"i4.energy/across/gsmlink/at"
)

func TestCommandWire(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "Appends CR", text: "AT+CSQ", expected: "AT+CSQ\r"},
		{name: "Keeps existing CR", text: "AT+CSQ\r", expected: "AT+CSQ\r"},
		{name: "Body with Ctrl-Z", text: "hello" + at.CtrlZ, expected: "hello\x1a\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(at.Cmd(tt.text, time.Second).Wire())
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCheckArg(t *testing.T) {
	tests := []struct {
		name  string
		arg   string
		valid bool
	}{
		{name: "URL", arg: "http://example.com/data?x=1", valid: true},
		{name: "Content type", arg: "application/json", valid: true},
		{name: "Empty", arg: "", valid: true},
		{name: "Quote", arg: `http://example.com/"x"`, valid: false},
		{name: "Carriage return", arg: "internet\rAT+CFUN=0", valid: false},
		{name: "Line feed", arg: "a\nb", valid: false},
		{name: "Ctrl-Z", arg: "apn" + at.CtrlZ, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := at.CheckArg(tt.arg)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, at.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got: %v", err)
			}
		})
	}
}

func ExampleSet() {
	fmt.Println(at.Set(at.MnemonicHTTPPara, "URL", "http://example.com"))
	fmt.Println(at.Set(at.MnemonicHTTPPara, "CID", 1))
	fmt.Println(at.Set(at.MnemonicHTTPRead, 101, 101))
	fmt.Println(at.Set(at.MnemonicHTTPAct))
	// Output:
	// AT+HTTPPARA="URL","http://example.com"
	// AT+HTTPPARA="CID",1
	// AT+HTTPREAD=101,101
	// AT+HTTPACTION
}
