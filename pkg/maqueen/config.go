package maqueen

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Defaults
const (
	DefaultInterval = 100 * time.Millisecond
	DefaultFrameGap = 5 * time.Millisecond
)

// Config configures a Bridge. Zero values select defaults.
type Config struct {
	// Address is the peripheral address, DefaultAddress if 0.
	Address uint16
	// Protocol is the firmware revision, V1 if unset.
	Protocol Protocol
	// Interval is the poll period.
	Interval time.Duration
	// FrameGap is the pause after each written frame. Negative disables it.
	FrameGap time.Duration
	// Debug logs every bus failure as a warning.
	Debug bool
	// MaxReadFailures stops the poll loop after this many consecutive
	// failed read phases. 0 never stops.
	MaxReadFailures int
	// Clock drives the poll ticker, frame gaps and auto-stop.
	Clock clock.Clock
}

func (c Config) withDefaults() Config {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.Protocol.Name == "" {
		c.Protocol = V1
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.FrameGap == 0 {
		c.FrameGap = DefaultFrameGap
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c
}
