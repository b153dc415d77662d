// Package maqueen implements the Maqueen Plus rover controller bridge.
//
// A Bridge owns all bus traffic to the rover controller. Application code
// enqueues command frames and reads a cached copy of the sensed state; a
// single poll goroutine writes the queued frames and refreshes the cache
// every Interval.
package maqueen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	"github.com/robotalks/maqueen.go/pkg/bus"
)

// MotorCommand sets motor power. A nil side keeps its last commanded value.
type MotorCommand struct {
	Left  *int
	Right *int
	// AutoStop stops both motors after this duration when positive. The
	// caller blocks for the duration.
	AutoStop time.Duration
}

// CompensationCommand sets compensation. A nil side keeps its last
// commanded value.
type CompensationCommand struct {
	Left  *int
	Right *int
}

// Int returns a pointer to v, for MotorCommand and CompensationCommand.
func Int(v int) *int {
	return &v
}

// Bridge is the rover controller facade.
type Bridge struct {
	dev    bus.Dev
	proto  Protocol
	config Config
	clock  clock.Clock

	queue CommandQueue
	cache StateCache

	state    atomic.Int32
	failures int

	lock   sync.Mutex
	motors MotorPower
	lights [2]int
	comps  Compensations
	errMsg string

	runLock sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
}

// New creates a Bridge and queues two halt commands. The poll loop is not
// started; use Start or run the Bridge as a Runnable.
func New(b bus.Bus, conf Config) (*Bridge, error) {
	if b == nil {
		return nil, errors.New("maqueen: nil bus")
	}
	conf = conf.withDefaults()
	if !conf.Protocol.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrUnknownProtocol, conf.Protocol)
	}
	br := &Bridge{
		dev:    bus.Dev{Bus: b, Addr: conf.Address},
		proto:  conf.Protocol,
		config: conf,
		clock:  conf.Clock,
	}
	br.Halt()
	br.Halt()
	return br, nil
}

// Open creates a Bridge and starts its poll loop.
func Open(b bus.Bus, conf Config) (*Bridge, error) {
	br, err := New(b, conf)
	if err != nil {
		return nil, err
	}
	br.Start()
	return br, nil
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "maqueen-" + b.proto.Name + "@" + b.dev.String()
}

// Protocol returns the protocol revision.
func (b *Bridge) Protocol() Protocol {
	return b.proto
}

// Address returns the peripheral address.
func (b *Bridge) Address() uint16 {
	return b.dev.Addr
}

// State returns the current poll loop phase.
func (b *Bridge) State() PollState {
	return PollState(b.state.Load())
}

// Pending returns the number of frames waiting for the next cycle.
func (b *Bridge) Pending() int {
	return b.queue.Len()
}

// Start launches the poll loop in the background. It is a no-op while a
// started loop is running; a loop that exited, by Stop or on escalation,
// is started again.
func (b *Bridge) Start() {
	b.runLock.Lock()
	defer b.runLock.Unlock()
	if b.done != nil {
		select {
		case <-b.done:
		default:
			return
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel, b.done, b.runErr = cancel, make(chan struct{}), nil
	b.state.Store(int32(Idle))
	go func(done chan struct{}) {
		err := b.Run(ctx)
		b.runLock.Lock()
		b.runErr = err
		b.runLock.Unlock()
		close(done)
	}(b.done)
}

// Done is closed when a started poll loop exits. It is nil when the loop
// was never started or has been stopped.
func (b *Bridge) Done() <-chan struct{} {
	b.runLock.Lock()
	defer b.runLock.Unlock()
	return b.done
}

// Stop requests the poll loop to exit and waits for the in-flight cycle
// and the final flush to finish. It returns the loop error, if the loop
// stopped by itself. Writes are rejected with ErrStopped until the loop is
// started again.
func (b *Bridge) Stop() error {
	b.runLock.Lock()
	cancel, done := b.cancel, b.done
	b.runLock.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	<-done
	b.runLock.Lock()
	defer b.runLock.Unlock()
	err := b.runErr
	if b.done == done {
		b.cancel, b.done, b.runErr = nil, nil, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close halts the rover and stops the poll loop.
func (b *Bridge) Close() error {
	b.Halt()
	return b.Stop()
}

// SetMotors queues a motor frame. Power is clamped to MaxMotorPower and
// omitted sides keep their last commanded values.
func (b *Bridge) SetMotors(cmd MotorCommand) bool {
	if b.stopped() {
		return false
	}
	if cmd.AutoStop < 0 {
		return b.reject(fmt.Errorf("%w: negative auto-stop %v", ErrInvalidArgs, cmd.AutoStop))
	}
	b.lock.Lock()
	if cmd.Left != nil {
		b.motors.Left = ClampPower(*cmd.Left)
	}
	if cmd.Right != nil {
		b.motors.Right = ClampPower(*cmd.Right)
	}
	m := b.motors
	b.lock.Unlock()
	if !b.enqueue(MotorFrame(m.Left, m.Right)) {
		return false
	}
	if cmd.AutoStop > 0 {
		b.clock.Sleep(cmd.AutoStop)
		return b.StopMotors()
	}
	return true
}

// Drive sets both motors.
func (b *Bridge) Drive(left, right int) bool {
	return b.SetMotors(MotorCommand{Left: &left, Right: &right})
}

// StopMotors sets both motors to zero.
func (b *Bridge) StopMotors() bool {
	return b.Drive(0, 0)
}

// CommandedMotors returns the last commanded motor power.
func (b *Bridge) CommandedMotors() MotorPower {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.motors
}

// SetLights queues a headlight frame, clamping each side to
// [0, Protocol.MaxLights].
func (b *Bridge) SetLights(left, right int) bool {
	left = clamp(left, 0, b.proto.MaxLights)
	right = clamp(right, 0, b.proto.MaxLights)
	if !b.enqueue(LightFrame(left, right, b.proto.MaxLights)) {
		return false
	}
	b.lock.Lock()
	b.lights = [2]int{left, right}
	b.lock.Unlock()
	return true
}

// Lights returns the last commanded headlight intensity. The controller
// does not report lights.
func (b *Bridge) Lights() (left, right int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lights[0], b.lights[1]
}

// Halt stops the motors and turns the headlights off.
func (b *Bridge) Halt() bool {
	return b.StopMotors() && b.SetLights(0, 0)
}

// ResetEncoders zeroes the encoder counters.
func (b *Bridge) ResetEncoders() bool {
	if !b.extended("reset encoders") {
		return false
	}
	return b.enqueue(EncoderResetFrame())
}

// SetPID enables or disables the on-board speed regulator.
func (b *Bridge) SetPID(enable bool) bool {
	if !b.extended("set PID") {
		return false
	}
	return b.enqueue(PIDFrame(enable))
}

// SetCompensations queues a compensation frame. Omitted sides keep their
// last commanded values.
func (b *Bridge) SetCompensations(cmd CompensationCommand) bool {
	if !b.extended("set compensations") || b.stopped() {
		return false
	}
	b.lock.Lock()
	if cmd.Left != nil {
		b.comps.Left = magnitude(*cmd.Left)
	}
	if cmd.Right != nil {
		b.comps.Right = magnitude(*cmd.Right)
	}
	c := b.comps
	b.lock.Unlock()
	return b.enqueue(CompensationFrame(c.Left, c.Right))
}

// Motors returns the sensed motor power and clears its freshness.
func (b *Bridge) Motors() (MotorPower, bool) {
	s, fresh := b.cache.Take(FreshMotors)
	return s.Motors, fresh
}

// GroundLine returns line detection per ground channel and clears its
// freshness.
func (b *Bridge) GroundLine() ([]bool, bool) {
	s, fresh := b.cache.Take(FreshGroundLine)
	line := make([]bool, b.proto.GroundChannels)
	copy(line, s.GroundLine[:])
	return line, fresh
}

// GroundAnalog returns the raw ground sensor values and clears their
// freshness.
func (b *Bridge) GroundAnalog() ([]uint16, bool) {
	s, fresh := b.cache.Take(FreshGroundAnalog)
	analog := make([]uint16, b.proto.GroundChannels)
	copy(analog, s.GroundAnalog[:])
	return analog, fresh
}

// Encoders returns the encoder counters. Always stale without Extended.
func (b *Bridge) Encoders() (Encoders, bool) {
	if !b.proto.Extended {
		return Encoders{}, false
	}
	s, fresh := b.cache.Take(FreshEncoders)
	return s.Encoders, fresh
}

// Compensations returns the sensed compensation values.
func (b *Bridge) Compensations() (Compensations, bool) {
	if !b.proto.Extended {
		return Compensations{}, false
	}
	s, fresh := b.cache.Take(FreshCompensations)
	return s.Compensations, fresh
}

// PID reports whether the speed regulator is enabled.
func (b *Bridge) PID() (enabled bool, fresh bool) {
	if !b.proto.Extended {
		return false, false
	}
	s, fresh := b.cache.Take(FreshPID)
	return s.PID, fresh
}

// Snapshot returns the cached state and freshness without clearing it.
func (b *Bridge) Snapshot() (Snapshot, Freshness) {
	return b.cache.Peek()
}

// LastErrorMessage returns the last recorded failure and clears it.
func (b *Bridge) LastErrorMessage() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	msg := b.errMsg
	b.errMsg = ""
	return msg
}

func (b *Bridge) extended(op string) bool {
	if b.proto.Extended {
		return true
	}
	return b.reject(fmt.Errorf("%w: %s on %s", ErrUnsupported, op, b.proto.Name))
}

// stopped rejects a write when the poll loop has exited, so commanded
// state is not changed for frames nobody will send.
func (b *Bridge) stopped() bool {
	if b.State() != Stopped {
		return false
	}
	return !b.reject(ErrStopped)
}

func (b *Bridge) enqueue(f Frame) bool {
	if b.State() == Stopped {
		return b.reject(fmt.Errorf("%w: %s dropped", ErrStopped, f))
	}
	b.queue.Enqueue(f)
	return true
}

func (b *Bridge) reject(err error) bool {
	b.recordError(err)
	return false
}

func (b *Bridge) recordError(err error) {
	b.lock.Lock()
	b.errMsg = err.Error()
	b.lock.Unlock()
	if b.config.Debug {
		glog.Warningf("%s: %v", b.dev.String(), err)
	} else {
		glog.V(2).Infof("%s: %v", b.dev.String(), err)
	}
}
