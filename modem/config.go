package modem

import (
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/gsmlink/at"
)

// Timeouts are the fixed intervals the sequencer waits after a command has
// been drained before it reads the response.
type Timeouts struct {
	Ping      time.Duration
	Query     time.Duration
	Status    time.Duration
	Bearer    time.Duration
	HTTP      time.Duration
	Data      time.Duration
	Action    time.Duration
	Read      time.Duration
	Terminate time.Duration
}

type Config struct {
	dialer     Dialer
	logger     *slog.Logger
	apn        string
	maxRetries int
	retryDelay time.Duration
	timeouts   Timeouts
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	if err := at.CheckArg(c.apn); err != nil {
		return fmt.Errorf("apn: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	t := &c.timeouts
	if t.Ping == 0 {
		t.Ping = 500 * time.Millisecond
	}
	if t.Query == 0 {
		t.Query = time.Second
	}
	if t.Status == 0 {
		t.Status = 500 * time.Millisecond
	}
	if t.Bearer == 0 {
		t.Bearer = 3 * time.Second
	}
	if t.HTTP == 0 {
		t.HTTP = time.Second
	}
	if t.Data == 0 {
		t.Data = 5 * time.Second
	}
	if t.Action == 0 {
		t.Action = 15 * time.Second
	}
	if t.Read == 0 {
		t.Read = 2 * time.Second
	}
	if t.Terminate == 0 {
		t.Terminate = time.Second
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithAPN sets the access point name configured on the bearer profile
// before it is opened. Without it the modem's stored profile is used.
func (b *ConfigBuilder) WithAPN(apn string) *ConfigBuilder {
	b.config.apn = apn
	return b
}

// WithMaxRetries bounds the number of pings Connect sends before it gives up.
func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	b.config.maxRetries = n
	return b
}

func (b *ConfigBuilder) WithRetryDelay(d time.Duration) *ConfigBuilder {
	b.config.retryDelay = d
	return b
}

// WithTimeouts overrides command timeouts. Zero fields keep their defaults.
func (b *ConfigBuilder) WithTimeouts(t Timeouts) *ConfigBuilder {
	b.config.timeouts = t
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
