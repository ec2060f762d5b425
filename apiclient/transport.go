package apiclient

import (
	"log/slog"
	"time"

	"github.com/Alia5/catinput/internal/log"
)

// DefaultAddr is where the backend serves device events.
const DefaultAddr = "127.0.0.1:9527"

// Config controls low-level websocket behavior such as timeouts.
type Config struct {
	// Path is the request path of the websocket endpoint.
	Path         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// PingInterval enables keepalive pings. The connection is considered dead
	// when nothing (event or pong) arrives for two intervals. Zero disables it;
	// a nil *Config uses 30s.
	PingInterval time.Duration
	// ReadLimit caps a single frame in bytes.
	ReadLimit int64
	Logger    *slog.Logger
	RawLogger log.RawLogger
}

func defaultConfig() Config {
	return Config{
		Path:         "/",
		DialTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		ReadLimit:    64 << 10,
	}
}

// withDefaults fills zero fields of cfg from defaultConfig.
func withDefaults(cfg *Config) Config {
	c := defaultConfig()
	if cfg == nil {
		c.Logger = slog.Default()
		c.RawLogger = log.NewRaw(nil)
		return c
	}
	if cfg.Path != "" {
		c.Path = cfg.Path
	}
	if cfg.DialTimeout > 0 {
		c.DialTimeout = cfg.DialTimeout
	}
	if cfg.WriteTimeout > 0 {
		c.WriteTimeout = cfg.WriteTimeout
	}
	c.PingInterval = cfg.PingInterval
	if cfg.ReadLimit > 0 {
		c.ReadLimit = cfg.ReadLimit
	}
	c.Logger = cfg.Logger
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.RawLogger = cfg.RawLogger
	if c.RawLogger == nil {
		c.RawLogger = log.NewRaw(nil)
	}
	return c
}
