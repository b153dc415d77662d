package maqueen

import (
	"context"
	"fmt"

	"github.com/golang/glog"
)

// PollState is the phase of the poll loop.
type PollState int32

// Poll loop phases.
const (
	Idle PollState = iota
	Draining
	Reading
	Stopped
)

// String implements fmt.Stringer.
func (s PollState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Reading:
		return "reading"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("PollState(%d)", int32(s))
}

const failureWarnEvery = 10

// Run implements Runnable. It polls every Interval until ctx is done, then
// writes whatever is still queued and returns. Once Run returns the state is
// Stopped and writes are rejected. Run must not be invoked concurrently with
// itself or with Start.
func (b *Bridge) Run(ctx context.Context) error {
	b.state.Store(int32(Idle))
	ticker := b.clock.Ticker(b.config.Interval)
	defer ticker.Stop()
	defer b.state.Store(int32(Stopped))
	defer b.flush()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.PollOnce(ctx); err != nil && b.escalated() {
				glog.Errorf("%s: stopping after %d read failures: %v", b.dev.String(), b.failures, err)
				return fmt.Errorf("%w: %v", ErrTooManyFailures, err)
			}
		}
	}
}

// PollOnce runs one cycle: drain the queue, then refresh the cache. It
// returns the read phase error, if any. Write failures are only recorded.
func (b *Bridge) PollOnce(ctx context.Context) error {
	b.state.Store(int32(Draining))
	b.drain()
	b.state.Store(int32(Reading))
	err := b.read()
	b.state.Store(int32(Idle))
	return err
}

func (b *Bridge) escalated() bool {
	return b.config.MaxReadFailures > 0 && b.failures >= b.config.MaxReadFailures
}

func (b *Bridge) drain() {
	frames := b.queue.Drain()
	for n, frame := range frames {
		if err := b.dev.Write(frame); err != nil {
			b.recordError(fmt.Errorf("write %s: %w", frame, err))
			if dropped := len(frames) - n - 1; dropped > 0 {
				glog.V(2).Infof("%s: dropped %d frames", b.dev.String(), dropped)
			}
			return
		}
		glog.V(2).Infof("%s: W %s", b.dev.String(), frame)
		if b.config.FrameGap > 0 {
			b.clock.Sleep(b.config.FrameGap)
		}
	}
}

// Flush writes every queued frame now, without the frame gap. The poll
// loop must not be running.
func (b *Bridge) Flush() {
	b.flush()
}

// flush writes remaining frames on shutdown without the gap.
func (b *Bridge) flush() {
	for _, frame := range b.queue.Drain() {
		if err := b.dev.Write(frame); err != nil {
			b.recordError(fmt.Errorf("write %s: %w", frame, err))
			return
		}
	}
}

func (b *Bridge) readBlock(reg byte, buf []byte) error {
	if err := b.dev.Write([]byte{reg}); err != nil {
		return fmt.Errorf("select %#02x: %w", reg, err)
	}
	if err := b.dev.Read(buf); err != nil {
		return fmt.Errorf("read %#02x: %w", reg, err)
	}
	return nil
}

func (b *Bridge) read() error {
	var motorBuf [MotorBlockSize]byte
	var groundBuf [GroundBlockSize]byte
	err := b.readBlock(RegMotor, motorBuf[:])
	if err == nil {
		err = b.readBlock(RegGround, groundBuf[:])
	}
	var mb motorBlock
	var gb groundBlock
	if err == nil {
		mb, err = decodeMotorBlock(motorBuf[:])
	}
	if err == nil {
		gb, err = decodeGroundBlock(groundBuf[:])
	}
	if err != nil {
		b.failures++
		b.recordError(err)
		if b.failures%failureWarnEvery == 0 {
			glog.Warningf("%s: %d consecutive read failures", b.dev.String(), b.failures)
		}
		return err
	}
	b.failures = 0
	b.cache.Replace(snapshotOf(mb, gb))
	return nil
}
