package client

import (
	"fmt"
	"time"
)

// Config carries every client-side knob from spec section 6: the
// response-header buffer's growth profile and the per-operation
// timeouts handed to the Submitter. Mirrors server.Config's shape and
// defaulting convention.
type Config struct {
	// ResponseHeaderBufIniLen is the response-header buffer's starting
	// size and growth increment (spec section 4.5).
	ResponseHeaderBufIniLen int
	// ResponseHeaderBufMaxLen is the absolute cap; exceeding it yields
	// ErrHeaderFieldsTooLong.
	ResponseHeaderBufMaxLen int
	// ResponseBodyBufLen sizes each body-fragment recv.
	ResponseBodyBufLen int

	ConnectTimeout time.Duration
	RecvTimeout    time.Duration
	SendTimeout    time.Duration
}

// DefaultConfig returns the conventional buffer sizes and timeouts.
func DefaultConfig() Config {
	return Config{
		ResponseHeaderBufIniLen: 4096,
		ResponseHeaderBufMaxLen: 4096 * 16,
		ResponseBodyBufLen:      8192,
		ConnectTimeout:          10 * time.Second,
		RecvTimeout:             60 * time.Second,
		SendTimeout:             60 * time.Second,
	}
}

func (c *Config) setDefaults() {
	d := DefaultConfig()
	if c.ResponseHeaderBufIniLen <= 0 {
		c.ResponseHeaderBufIniLen = d.ResponseHeaderBufIniLen
	}
	if c.ResponseHeaderBufMaxLen <= 0 {
		c.ResponseHeaderBufMaxLen = d.ResponseHeaderBufMaxLen
	}
	if c.ResponseBodyBufLen <= 0 {
		c.ResponseBodyBufLen = d.ResponseBodyBufLen
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.RecvTimeout <= 0 {
		c.RecvTimeout = d.RecvTimeout
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
}

// validate checks cfg against spec section 6's client knob constraints,
// after setDefaults has already filled in every zero-valued field.
func (c Config) validate() error {
	switch {
	case c.ResponseHeaderBufMaxLen < c.ResponseHeaderBufIniLen:
		return fmt.Errorf("ringhttp/client: ResponseHeaderBufMaxLen must be >= ResponseHeaderBufIniLen")
	case c.ResponseBodyBufLen <= 0:
		return fmt.Errorf("ringhttp/client: ResponseBodyBufLen must be > 0")
	default:
		return nil
	}
}
