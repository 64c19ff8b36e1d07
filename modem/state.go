package modem

// ConnectionState is the lifecycle position of a Modem.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Identifying
	Connected
	Failed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Identifying:
		return "identifying"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
