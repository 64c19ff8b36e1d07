package modem_test

import (
	"context"
	"errors"
	"testing"

	"i4.energy/across/gsmlink/modem"
)

func TestModemQueries(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		reply    string
		query    func(*modem.Modem) (string, error)
		expected string
		wantErr  error
	}{
		{
			name:     "ICCID",
			cmd:      "AT+CCID",
			reply:    "AT+CCID\r\n" + testICCID + "\r\n\r\nOK\r\n",
			query:    func(m *modem.Modem) (string, error) { return m.ICCID(context.Background()) },
			expected: testICCID,
		},
		{
			name:     "IMSI",
			cmd:      "AT+CIMI",
			reply:    "AT+CIMI\r\n" + testIMSI + "\r\n\r\nOK\r\n",
			query:    func(m *modem.Modem) (string, error) { return m.IMSI(context.Background()) },
			expected: testIMSI,
		},
		{
			name:     "Status",
			cmd:      "AT+CREG?",
			reply:    "AT+CREG?\r\n+CREG: 0,1\r\n\r\nOK\r\n",
			query:    func(m *modem.Modem) (string, error) { return m.Status(context.Background()) },
			expected: "0",
		},
		{
			name:     "SignalStrength",
			cmd:      "AT+CSQ",
			reply:    "AT+CSQ\r\n+CSQ: 21,0\r\n\r\nOK\r\n",
			query:    func(m *modem.Modem) (string, error) { return m.SignalStrength(context.Background()) },
			expected: "21",
		},
		{
			name:    "Missing value",
			cmd:     "AT+CSQ",
			reply:   "OK\r\n",
			query:   func(m *modem.Modem) (string, error) { return m.SignalStrength(context.Background()) },
			wantErr: modem.ErrNoValue,
		},
		{
			name:    "Silent modem",
			cmd:     "AT+CREG?",
			reply:   "",
			query:   func(m *modem.Modem) (string, error) { return m.Status(context.Background()) },
			wantErr: modem.ErrNoValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := modem.NewTestTransport()
			m := connectedModem(t, transport)
			transport.Reply(tt.cmd, tt.reply)

			got, err := tt.query(m)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestModemQueryDeviceError(t *testing.T) {
	transport := modem.NewTestTransport()
	m := connectedModem(t, transport)
	transport.Reply("AT+CSQ", "AT+CSQ\r\n+CME ERROR: 30\r\n")

	_, err := m.SignalStrength(context.Background())
	var perr *modem.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got: %v", err)
	}
	if perr.Text != "CME ERROR: 30" {
		t.Errorf("unexpected error text: %q", perr.Text)
	}
}

func TestModemDeviceInfo(t *testing.T) {
	transport := modem.NewTestTransport()
	m := connectedModem(t, transport)

	info, err := m.DeviceInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != (modem.DeviceInfo{ICCID: testICCID, IMSI: testIMSI}) {
		t.Errorf("unexpected device info: %+v", info)
	}
}
