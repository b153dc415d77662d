package maqueen

import "sync"

// Freshness marks value groups updated since their last read.
type Freshness uint8

// Value groups tracked by StateCache.
const (
	FreshMotors Freshness = 1 << iota
	FreshEncoders
	FreshCompensations
	FreshPID
	FreshGroundLine
	FreshGroundAnalog

	FreshNone Freshness = 0
	FreshAll  Freshness = FreshMotors | FreshEncoders | FreshCompensations |
		FreshPID | FreshGroundLine | FreshGroundAnalog
)

// Has reports whether every group in g is fresh.
func (f Freshness) Has(g Freshness) bool {
	return f&g == g
}

// Snapshot is the sensed state decoded from one successful read cycle.
type Snapshot struct {
	Motors        MotorPower
	Encoders      Encoders
	Compensations Compensations
	PID           bool
	GroundLine    [MaxGroundChannels]bool
	GroundAnalog  [MaxGroundChannels]uint16
}

func snapshotOf(m motorBlock, g groundBlock) Snapshot {
	return Snapshot{
		Motors:        m.motors,
		Encoders:      m.encoders,
		Compensations: m.compensations,
		PID:           m.pid,
		GroundLine:    g.line,
		GroundAnalog:  g.analog,
	}
}

// StateCache holds the last good Snapshot with a freshness bit per group.
// Values survive reads; only the freshness bit is cleared.
type StateCache struct {
	snap  Snapshot
	fresh Freshness
	lock  sync.Mutex
}

// Replace installs s and marks every group fresh.
func (c *StateCache) Replace(s Snapshot) {
	c.lock.Lock()
	c.snap, c.fresh = s, FreshAll
	c.lock.Unlock()
}

// Take returns the snapshot and whether all of groups were fresh, then
// clears those groups.
func (c *StateCache) Take(groups Freshness) (Snapshot, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fresh := c.fresh.Has(groups)
	c.fresh &^= groups
	return c.snap, fresh
}

// Peek returns the snapshot and freshness without clearing anything.
func (c *StateCache) Peek() (Snapshot, Freshness) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.snap, c.fresh
}
