package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by New when the corresponding Config field is empty.
const (
	DefaultPrefix  = "default"
	DefaultProto   = "http"
	DefaultHost    = "localhost"
	DefaultPort    = 3058
	DefaultTimeout = 7500 * time.Millisecond
)

// PrefixHeader carries the tenant prefix on every request.
const PrefixHeader = "x-yildiz-prefix"

// Connection pool bounds. They are fixed for the lifetime of a Client.
const (
	maxConnsPerHost = 200
	maxIdleConns    = 150
	idleKeepAlive   = 3 * time.Second
)

// Config describes the target server and the tenant a Client talks for.
// A Client copies its Config at construction; later changes to the value
// passed to New have no effect.
type Config struct {
	// Prefix is the tenant namespace sent as x-yildiz-prefix.
	Prefix string

	// AuthToken, when set, is sent verbatim as the authorization header.
	AuthToken string

	Proto string
	Host  string
	Port  int

	// DisableConnectionReuse turns off the keep-alive pool; every request
	// then dials a fresh connection.
	DisableConnectionReuse bool

	// EnableTimings attaches a TimingInfo to every Response.
	EnableTimings bool

	// DefaultTimeout bounds a request that does not carry its own timeout.
	DefaultTimeout time.Duration
}

// withDefaults returns a copy of c with empty fields filled in.
func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Prefix) == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Proto == "" {
		c.Proto = DefaultProto
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	c.Proto = strings.ToLower(c.Proto)
	return c
}

func (c Config) validate() error {
	if c.Proto != "http" && c.Proto != "https" {
		return fmt.Errorf("transport: unsupported protocol %q", c.Proto)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("transport: invalid port %d", c.Port)
	}
	if strings.ContainsAny(c.Host, "/ ") {
		return fmt.Errorf("transport: invalid host %q", c.Host)
	}
	return nil
}

// Origin returns proto://host:port for the configuration.
func (c Config) Origin() string {
	return c.Proto + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
