package at

const (
	// Terminal Control
	CR     = "\r"
	CtrlZ  = "\x1a"
	Prefix = "AT"
	Prompt = ">"

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"

	// Commands
	CmdPing          = "AT"
	CmdICCID         = "AT+CCID"
	CmdIMSI          = "AT+CIMI"
	CmdRegistration  = "AT+CREG?"
	CmdSignalQuality = "AT+CSQ"
	CmdBearerQuery   = "AT+SAPBR=2,1"
	CmdBearerOpen    = "AT+SAPBR=1,1"
	CmdHTTPInit      = "AT+HTTPINIT"
	CmdHTTPTerm      = "AT+HTTPTERM"
	CmdHTTPSSLOn     = "AT+HTTPSSL=1"
	CmdHTTPSSLOff    = "AT+HTTPSSL=0"

	// Mnemonics used to build parameterised commands
	MnemonicBearer   = "+SAPBR"
	MnemonicHTTPPara = "+HTTPPARA"
	MnemonicHTTPData = "+HTTPDATA"
	MnemonicHTTPAct  = "+HTTPACTION"
	MnemonicHTTPRead = "+HTTPREAD"

	BearerStatusOpen   = "1"
	DefaultContentType = "text/plain"
)

type LineType int

const (
	TypeTerminal LineType = iota // OK, >
	TypeInfo                     // +CSQ: 15,99
	TypeError                    // ERROR
	TypeData                     // echo and plain payload lines
)
