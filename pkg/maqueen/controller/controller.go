// Package controller exposes a rover bridge, and optionally its carrier
// board, as an L1 controller.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/drivers/ws2812"
	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	l1msgs "github.com/robotalks/maqueen.go/pkg/l1/msgs"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
	"github.com/robotalks/maqueen.go/pkg/mbits"
	"github.com/robotalks/maqueen.go/pkg/sim/see"
)

// ErrNoRGB indicates the protocol has an RGB strip but no port drives it.
var ErrNoRGB = errors.New("maqueen: rgb strip not configured")

// Controller is an L1 controller for the rover.
//
// Sensed state is collected at PrLvSense, commands run at PrLvControl and
// a Status event is sent at PrLvPostProc whenever something changed.
type Controller struct {
	Bridge    *maqueen.Bridge
	Board     *mbits.Board
	Registrar l1.Registrar
	// RGB is the strip under the rover, on protocols that have one.
	RGB *ws2812.Strip
	// Visual, when set, streams the simulated pose.
	Visual *see.Adapter
	// BoardEvery is the board sample period, zero disables sampling.
	BoardEvery time.Duration
	Clock      clock.Clock

	status  msgs.Status
	changed bool

	autoStopAt time.Time
	muteAt     time.Time
	lastBoard  time.Time

	closers []io.Closer
}

// New creates a Controller for a bridge that is not started yet; the
// loop runs the bridge.
func New(bridge *maqueen.Bridge, reg l1.Registrar) *Controller {
	return &Controller{
		Bridge:     bridge,
		Registrar:  reg,
		BoardEvery: time.Second,
		Clock:      clock.New(),
		status:     msgs.Status{Protocol: bridge.Protocol().Name},
		changed:    true,
	}
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.Bridge.Name()
}

// AddToLoop implements LoopAdder. The Controller is also the Runnable
// driving the bridge poll loop.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(c.sense))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.report))
	if c.Visual != nil {
		c.Visual.AddToLoop(loop)
	}
}

// Run implements Runnable. It polls the bridge until ctx is done, halting
// the rover in the final flush. An escalated bridge error is returned as is,
// which stops the loop.
func (c *Controller) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		c.Bridge.Halt()
		cancel()
	})
	defer stop()
	return c.Bridge.Run(runCtx)
}

// Close halts the rover and releases the hardware.
func (c *Controller) Close() error {
	var errs fx.AggregatedError
	errs.Add(c.Bridge.Close())
	for _, closer := range c.closers {
		if closer != nil {
			errs.Add(closer.Close())
		}
	}
	return errs.Aggregate()
}

func (c *Controller) sense(cc fx.ControlContext) error {
	now := c.Clock.Now()
	if !c.autoStopAt.IsZero() && !now.Before(c.autoStopAt) {
		c.autoStopAt = time.Time{}
		glog.V(2).Info("auto stop")
		c.Bridge.StopMotors()
	}
	if !c.muteAt.IsZero() && !now.Before(c.muteAt) {
		c.muteAt = time.Time{}
		if err := c.Board.Mute(); err != nil {
			glog.Warningf("mute: %v", err)
		}
	}

	if c.collect() != maqueen.FreshNone {
		c.changed = true
	}

	if c.Board != nil && c.BoardEvery > 0 && now.Sub(c.lastBoard) >= c.BoardEvery {
		c.lastBoard = now
		return c.Registrar.SendEvent(cc.Context(), c.sampleBoard())
	}
	return nil
}

// collect takes every fresh value group into the status.
func (c *Controller) collect() (fresh maqueen.Freshness) {
	s := &c.status
	if m, ok := c.Bridge.Motors(); ok {
		s.MotorLeft, s.MotorRight = int32(m.Left), int32(m.Right)
		fresh |= maqueen.FreshMotors
	}
	if line, ok := c.Bridge.GroundLine(); ok {
		s.GroundLine = line
		fresh |= maqueen.FreshGroundLine
	}
	if analog, ok := c.Bridge.GroundAnalog(); ok {
		s.GroundAnalog = s.GroundAnalog[:0]
		for _, v := range analog {
			s.GroundAnalog = append(s.GroundAnalog, uint32(v))
		}
		fresh |= maqueen.FreshGroundAnalog
	}
	if enc, ok := c.Bridge.Encoders(); ok {
		s.EncoderLeft, s.EncoderRight = uint32(enc.Left), uint32(enc.Right)
		fresh |= maqueen.FreshEncoders
	}
	if comp, ok := c.Bridge.Compensations(); ok {
		s.CompLeft, s.CompRight = int32(comp.Left), int32(comp.Right)
		fresh |= maqueen.FreshCompensations
	}
	if pid, ok := c.Bridge.PID(); ok {
		s.Pid = pid
		fresh |= maqueen.FreshPID
	}
	s.Fresh = uint32(fresh)
	return fresh
}

func (c *Controller) snapshotStatus() *msgs.Status {
	s := c.status
	cmd := c.Bridge.CommandedMotors()
	s.CommandedLeft, s.CommandedRight = int32(cmd.Left), int32(cmd.Right)
	l, r := c.Bridge.Lights()
	s.LightsLeft, s.LightsRight = int32(l), int32(r)
	s.State = c.Bridge.State().String()
	s.Pending = uint32(c.Bridge.Pending())
	s.GroundLine = append([]bool(nil), s.GroundLine...)
	s.GroundAnalog = append([]uint32(nil), s.GroundAnalog...)
	return &s
}

func (c *Controller) report(cc fx.ControlContext) error {
	if msg := c.Bridge.LastErrorMessage(); msg != "" {
		c.status.Error = msg
		c.changed = true
	}
	if !c.changed {
		return nil
	}
	c.changed = false
	ev := c.snapshotStatus()
	c.status.Error = ""
	return c.Registrar.SendEvent(cc.Context(), ev)
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		reply, handled := c.execute(cc, cmdMsg.Command.Msg())
		if !handled {
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Errorf("reply: %v", err)
		}
	}))
	return nil
}

func (c *Controller) execute(cc fx.ControlContext, msg fx.Message) (fx.Message, bool) {
	switch m := msg.(type) {
	case *msgs.MotorsSet:
		return c.setMotors(cc, m), true
	case *msgs.LightsSet:
		return c.result(c.Bridge.SetLights(int(m.Left), int(m.Right))), true
	case *msgs.Halt:
		c.autoStopAt = time.Time{}
		return c.result(c.Bridge.Halt()), true
	case *msgs.EncodersReset:
		return c.result(c.Bridge.ResetEncoders()), true
	case *msgs.PIDSet:
		return c.result(c.Bridge.SetPID(m.Enable)), true
	case *msgs.CompensationsSet:
		var cmd maqueen.CompensationCommand
		if !m.KeepLeft {
			cmd.Left = maqueen.Int(int(m.Left))
		}
		if !m.KeepRight {
			cmd.Right = maqueen.Int(int(m.Right))
		}
		return c.result(c.Bridge.SetCompensations(cmd)), true
	case *msgs.StatusQuery:
		return &msgs.StatusReply{Status: c.snapshotStatus()}, true
	case *msgs.BoardQuery:
		if c.Board == nil {
			return l1msgs.NewCommandErr(mbits.ErrNotPresent), true
		}
		return &msgs.BoardReply{Board: c.sampleBoard()}, true
	case *msgs.ToneSet:
		return c.tone(m), true
	case *msgs.DisplayFill:
		return c.fill(m), true
	case *msgs.RGBFill:
		return c.fillRGB(m), true
	}
	return nil, false
}

func (c *Controller) result(ok bool) fx.Message {
	if ok {
		return l1msgs.NewCommandOK()
	}
	msg := c.Bridge.LastErrorMessage()
	if msg == "" {
		msg = maqueen.ErrInvalidArgs.Error()
	}
	return l1msgs.NewCommandErrFromMsg(msg)
}

func (c *Controller) setMotors(cc fx.ControlContext, m *msgs.MotorsSet) fx.Message {
	var cmd maqueen.MotorCommand
	if !m.KeepLeft {
		cmd.Left = maqueen.Int(int(m.Left))
	}
	if !m.KeepRight {
		cmd.Right = maqueen.Int(int(m.Right))
	}
	if !c.Bridge.SetMotors(cmd) {
		return c.result(false)
	}
	c.autoStopAt = time.Time{}
	if m.AutoStopMs > 0 {
		c.autoStopAt = c.Clock.Now().Add(time.Duration(m.AutoStopMs) * time.Millisecond)
	}
	return l1msgs.NewCommandOK()
}

func (c *Controller) tone(m *msgs.ToneSet) fx.Message {
	if c.Board == nil {
		return l1msgs.NewCommandErr(mbits.ErrNotPresent)
	}
	c.muteAt = time.Time{}
	if err := c.Board.Tone(physic.Frequency(m.FrequencyHz) * physic.Hertz); err != nil {
		return l1msgs.NewCommandErr(err)
	}
	if m.FrequencyHz > 0 && m.DurationMs > 0 {
		c.muteAt = c.Clock.Now().Add(time.Duration(m.DurationMs) * time.Millisecond)
	}
	return l1msgs.NewCommandOK()
}

func (c *Controller) fill(m *msgs.DisplayFill) fx.Message {
	col, err := colorful.Hex(m.Color)
	if err != nil {
		return l1msgs.NewCommandErr(fmt.Errorf("%w: color %q", maqueen.ErrInvalidArgs, m.Color))
	}
	if c.Board == nil {
		return l1msgs.NewCommandErr(mbits.ErrNotPresent)
	}
	strip, err := c.Board.Display()
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	strip.Fill(col)
	if err := strip.Write(); err != nil {
		return l1msgs.NewCommandErr(err)
	}
	return l1msgs.NewCommandOK()
}

func (c *Controller) fillRGB(m *msgs.RGBFill) fx.Message {
	proto := c.Bridge.Protocol()
	if proto.RGBPixels == 0 {
		return l1msgs.NewCommandErr(fmt.Errorf("%w: rgb on %s", maqueen.ErrUnsupported, proto.Name))
	}
	if c.RGB == nil {
		return l1msgs.NewCommandErr(ErrNoRGB)
	}
	col, err := colorful.Hex(m.Color)
	if err != nil {
		return l1msgs.NewCommandErr(fmt.Errorf("%w: color %q", maqueen.ErrInvalidArgs, m.Color))
	}
	if len(m.Pixels) == 0 {
		c.RGB.Fill(col)
	}
	for _, i := range m.Pixels {
		if err := c.RGB.Set(int(i), col); err != nil {
			return l1msgs.NewCommandErr(fmt.Errorf("%w: pixel %d", maqueen.ErrInvalidArgs, i))
		}
	}
	if err := c.RGB.Write(); err != nil {
		return l1msgs.NewCommandErr(err)
	}
	return l1msgs.NewCommandOK()
}

func (c *Controller) sampleBoard() *msgs.BoardStatus {
	r, err := c.Board.Sample()
	st := &msgs.BoardStatus{
		ButtonA:      r.ButtonA,
		ButtonB:      r.ButtonB,
		Microphone:   r.Microphone,
		AccelX:       float32(r.Accel.X),
		AccelY:       float32(r.Accel.Y),
		AccelZ:       float32(r.Accel.Z),
		GyroX:        float32(r.Gyro.X),
		GyroY:        float32(r.Gyro.Y),
		GyroZ:        float32(r.Gyro.Z),
		TemperatureC: celsius(r.Temperature),
	}
	if err != nil && !errors.Is(err, mbits.ErrNotPresent) {
		st.Error = err.Error()
	}
	return st
}

func celsius(t physic.Temperature) float32 {
	if t == 0 {
		return 0
	}
	return float32(float64(t-physic.ZeroCelsius) / float64(physic.Kelvin))
}
