package modem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"i4.energy/across/gsmlink/at"
)

// readWindow is the number of body bytes fetched per AT+HTTPREAD.
const readWindow = 101

// maxBodyPrealloc caps the buffer reserved up front for a response body.
// The length comes from the device and is not trusted for allocation.
const maxBodyPrealloc = 64 * readWindow

// Method is the action code of AT+HTTPACTION.
type Method int

const (
	MethodGet  Method = 0
	MethodPost Method = 1
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "Method(" + strconv.Itoa(int(m)) + ")"
	}
}

// RequestOptions configure a single HTTP request.
type RequestOptions struct {
	Method Method
	// ContentType defaults to text/plain.
	ContentType string
	// Data is the request body. Required for POST.
	Data []byte
}

// Response is the outcome of an HTTP request made through the modem. On
// failure it holds whatever was learned before the failure.
type Response struct {
	StatusCode    int
	ContentLength int
	Body          []byte
}

// InitHTTP makes sure the bearer profile used by the HTTP service is open.
func (m *Modem) InitHTTP(ctx context.Context) error {
	t := m.config.timeouts

	res, err := m.exec(ctx, at.Cmd(at.CmdBearerQuery, t.Bearer))
	if err != nil {
		return fmt.Errorf("query bearer: %w", err)
	}
	if len(res.Info) > 1 && res.Info[1] == at.BearerStatusOpen {
		m.logger.Debug("Bearer already open")
		return nil
	}

	var cmds []at.Command
	if m.config.apn != "" {
		cmds = append(cmds,
			at.Cmd(at.Set(at.MnemonicBearer, 3, 1, "CONTYPE", "GPRS"), 0),
			at.Cmd(at.Set(at.MnemonicBearer, 3, 1, "APN", m.config.apn), 0),
		)
	}
	cmds = append(cmds, at.Cmd(at.CmdBearerOpen, 0))

	if _, err := m.sequence(ctx, t.Bearer, cmds...); err != nil {
		return fmt.Errorf("open bearer: %w", err)
	}
	m.logger.Info("Bearer opened", "apn", m.config.apn)
	return nil
}

// Request performs an HTTP request with the modem's built-in HTTP service.
//
// The modem has a single HTTP context. It is initialised at the start of
// every request and terminated exactly once before Request returns, whatever
// the outcome. A concurrent call fails with ErrHTTPSessionActive.
func (m *Modem) Request(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	if opts.Method == MethodPost && len(opts.Data) == 0 {
		return nil, ErrMissingBody
	}
	if opts.ContentType == "" {
		opts.ContentType = at.DefaultContentType
	}
	if err := errors.Join(at.CheckArg(rawURL), at.CheckArg(opts.ContentType)); err != nil {
		return nil, err
	}
	if m.sequencer() == nil {
		return nil, ErrNotInitialized
	}
	if !m.httpActive.CompareAndSwap(false, true) {
		return nil, ErrHTTPSessionActive
	}
	defer m.httpActive.Store(false)

	logger := m.logger.With("url", rawURL, "method", opts.Method.String())
	logger.Info("HTTP request")

	resp, err := m.doRequest(ctx, rawURL, opts)

	if termErr := m.terminateHTTP(ctx); termErr != nil {
		logger.Warn("Failed to terminate HTTP context", "error", termErr)
		if err == nil {
			err = fmt.Errorf("terminate HTTP context: %w", termErr)
		}
	}

	if err != nil {
		logger.Error("HTTP request failed", "error", err)
		return resp, err
	}
	logger.Info("HTTP request completed", "status", resp.StatusCode, "bytes", len(resp.Body))
	return resp, nil
}

func (m *Modem) doRequest(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	t := m.config.timeouts

	if _, err := m.exec(ctx, at.Cmd(at.CmdHTTPInit, t.HTTP)); err != nil {
		return nil, fmt.Errorf("init HTTP context: %w", err)
	}

	ssl := at.CmdHTTPSSLOff
	if isHTTPS(rawURL) {
		ssl = at.CmdHTTPSSLOn
	}
	cmds := []at.Command{
		at.Cmd(ssl, 0),
		at.Cmd(at.Set(at.MnemonicHTTPPara, "CID", 1), 0),
		at.Cmd(at.Set(at.MnemonicHTTPPara, "URL", rawURL), 0),
	}
	if opts.Method == MethodPost {
		cmds = append(cmds,
			at.Cmd(at.Set(at.MnemonicHTTPPara, "CONTENT", opts.ContentType), 0),
			at.Cmd(at.Set(at.MnemonicHTTPData, len(opts.Data), int(t.Data.Milliseconds())), t.Data),
			at.Cmd(string(opts.Data)+at.CtrlZ, t.Data),
		)
	}
	cmds = append(cmds, at.Cmd(at.Set(at.MnemonicHTTPAct, int(opts.Method)), t.Action))

	res, err := m.sequence(ctx, t.HTTP, cmds...)
	if err != nil {
		return nil, err
	}

	if len(res.Info) < 3 {
		return nil, &HTTPSessionError{Reason: fmt.Sprintf("no action result in %q", res.Lines)}
	}
	code, codeErr := strconv.Atoi(res.Info[1])
	length, lenErr := strconv.Atoi(res.Info[2])
	if codeErr != nil || lenErr != nil || length < 0 {
		return nil, &HTTPSessionError{Reason: fmt.Sprintf("malformed action result %q", res.Info)}
	}

	resp := &Response{StatusCode: code, ContentLength: length}
	if code != 200 {
		return resp, &HTTPSessionError{StatusCode: code, Reason: "unexpected status"}
	}

	body, err := m.readBody(ctx, length)
	resp.Body = body
	return resp, err
}

// readBody fetches the response body in fixed windows. A malformed window
// stops reading; the bytes gathered so far are returned with the error.
func (m *Modem) readBody(ctx context.Context, total int) ([]byte, error) {
	body := make([]byte, 0, min(total, maxBodyPrealloc))

	for start := 0; start < total; start += readWindow {
		size := min(readWindow, total-start)
		cmd := at.Cmd(at.Set(at.MnemonicHTTPRead, start, size), m.config.timeouts.Read)

		res, err := m.exec(ctx, cmd)
		var perr *ProtocolError
		if err != nil && !(errors.As(err, &perr) && res != nil) {
			return body, &HTTPSessionError{StatusCode: 200, Reason: fmt.Sprintf("read window at %d", start), Err: err}
		}

		content, ok := windowContent(res.Raw, size)
		if !ok {
			m.logger.Warn("Malformed HTTP read window", "start", start, "lines", res.Lines)
			return body, &HTTPSessionError{StatusCode: 200, Reason: fmt.Sprintf("malformed window at %d", start)}
		}
		body = append(body, content...)
	}
	return body, nil
}

// windowContent returns the payload of a read window byte for byte: the
// number of bytes announced by the +HTTPREAD header, starting right after
// the header's line end. Nothing but the closing OK may follow it.
func windowContent(raw []byte, size int) ([]byte, bool) {
	header := []byte(at.MnemonicHTTPRead + ":")
	i := bytes.Index(raw, header)
	if i < 0 {
		return nil, false
	}
	rest := raw[i+len(header):]

	eol := bytes.IndexByte(rest, at.CR[0])
	if eol < 0 {
		return nil, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(rest[:eol])))
	if err != nil || n != size {
		return nil, false
	}
	rest = rest[eol+1:]
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}

	if len(rest) < n || strings.TrimSpace(string(rest[n:])) != at.OK {
		return nil, false
	}
	return rest[:n], true
}

// terminateHTTP releases the HTTP context. It runs even when ctx is already
// cancelled.
func (m *Modem) terminateHTTP(ctx context.Context) error {
	_, err := m.exec(context.WithoutCancel(ctx), at.Cmd(at.CmdHTTPTerm, m.config.timeouts.Terminate))
	return err
}

func isHTTPS(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(rawURL), "https://")
	}
	return strings.EqualFold(u.Scheme, "https")
}
