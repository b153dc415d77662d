// Package teleop drives a Maqueen rover from a joystick. The teleop
// controller is an L1 controller itself: tools query its status and point
// it at a rover with TeleopConnect, and it sends MotorsSet to that rover.
package teleop

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	connenv "github.com/robotalks/maqueen.go/pkg/l1/env/connector"
	l1msgs "github.com/robotalks/maqueen.go/pkg/l1/msgs"
	rover "github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
	"github.com/robotalks/maqueen.go/pkg/teleop/device"
	"github.com/robotalks/maqueen.go/pkg/teleop/msgs"
)

// RetryInterval is the delay between attempts to open the joystick.
const RetryInterval = time.Second

const noDevice = 0xffffffff

// Controller is an L2 controller sending commands to a rover controller.
type Controller struct {
	Registrar    l1.Registrar
	RegistryURL  string
	DeviceIndex  int
	Verbose      bool
	Mixer        Mixer
	HaltButton   int
	LightsButton int
	AutoStop     time.Duration
	// Target is connected on the first iteration when valid.
	Target l1.ControllerRef
	Clock  clock.Clock

	OpenDevice   func(index int) (device.Device, error)
	NewConnector func(registryURL string) (l1.Connector, error)

	conn        *connection
	dev         device.Device
	eventCh     chan device.Event
	targetDone  bool
	lights      bool
	left, right int
	sentAt      time.Time

	status        msgs.TeleopStatus
	statusChanged bool
}

// NewController creates a Controller with the default config.
func NewController(reg l1.Registrar, registryURL string) *Controller {
	c := &Controller{
		Registrar:     reg,
		RegistryURL:   registryURL,
		Clock:         clock.New(),
		statusChanged: true,
	}
	c.apply(&defaultConfig)
	return c
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c)
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// Close stops the connected rover and disconnects.
func (c *Controller) Close() error {
	c.disconnect()
	return nil
}

// Run implements Runnable. It owns the joystick: opens it, forwards its
// events into the loop and reopens it after it is lost.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.dev != nil {
			c.dev.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	var retry <-chan time.Time
	if !c.attach(ctx, loopCtl) {
		retry = c.Clock.After(RetryInterval)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retry:
			retry = nil
			if !c.attach(ctx, loopCtl) {
				retry = c.Clock.After(RetryInterval)
			}
		case ev, ok := <-c.eventCh:
			if ok {
				loopCtl.PostMessage(&eventMsg{event: ev})
			} else {
				glog.Warningf("joystick %d lost", c.dev.Index())
				loopCtl.PostMessage(&eventMsg{stopAll: true})
				c.dev.Close()
				c.dev, c.eventCh = nil, nil
				retry = c.Clock.After(RetryInterval)
				loopCtl.PostMessage(&statusMsg{device: &msgs.TeleopDevice{Index: noDevice}})
			}
			loopCtl.TriggerNext()
		}
	}
}

func (c *Controller) openDevice() (device.Device, error) {
	switch {
	case c.OpenDevice != nil:
		return c.OpenDevice(c.DeviceIndex)
	case c.DeviceIndex >= 0:
		return device.Open(c.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

func (c *Controller) attach(ctx context.Context, loopCtl fx.LoopControl) bool {
	js, err := c.openDevice()
	if err != nil {
		glog.V(1).Infof("open joystick: %v", err)
		return false
	}
	if js == nil {
		glog.V(1).Info("no joystick detected")
		return false
	}
	glog.Infof("joystick %d %q opened, %d axes, %d buttons", js.Index(), js.Name(), js.AxisCount(), js.ButtonCount())
	c.dev, c.eventCh = js, make(chan device.Event, 1)
	go c.pollDevice(ctx, js, c.eventCh)
	loopCtl.PostMessage(&statusMsg{device: &msgs.TeleopDevice{
		Index:   uint32(js.Index()),
		Name:    js.Name(),
		Axes:    uint32(js.AxisCount()),
		Buttons: uint32(js.ButtonCount()),
	}})
	loopCtl.TriggerNext()
	return true
}

func (c *Controller) pollDevice(ctx context.Context, dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.V(1).Infof("joystick read: %v", err)
			return
		}
		if c.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch evt := ev.(type) {
			case device.AxisEvent:
				glog.Infof("%sAxis %d: %d", prefix, evt.Index(), evt.Value())
			case device.ButtonEvent:
				glog.Infof("%sButton %d: %v", prefix, evt.Index(), evt.Pressed())
			}
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	if !c.targetDone && c.Target.IsValid() {
		c.targetDone = true
		reply := c.connect(cc, &msgs.TeleopConnect{Type: c.Target.Type, ID: c.Target.ID})
		if err, ok := reply.(error); ok {
			glog.Errorf("connect %s: %v", c.Target.Name(), err)
		}
	}
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *l1.CommandMsg:
			switch m := msg.Command.Msg().(type) {
			case *msgs.TeleopStatusQuery:
				mctx.MessageTaken()
				status := c.status
				msg.Command.Done(&msgs.TeleopStatusReply{Status: &status})
			case *msgs.TeleopConnect:
				mctx.MessageTaken()
				msg.Command.Done(c.connect(cc, m))
			}
		case *eventMsg:
			mctx.MessageTaken()
			c.handleEvent(cc, msg)
		case *statusMsg:
			mctx.MessageTaken()
			if msg.device != nil {
				if msg.device.Index == noDevice {
					c.status.Device = nil
				} else {
					c.status.Device = msg.device
				}
				c.statusChanged = true
			}
		}
	}))
	c.keepAlive(cc.Time())
	return nil
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	if !c.statusChanged {
		return nil
	}
	c.statusChanged = false
	status := c.status
	return c.Registrar.SendEvent(cc.Context(), &status)
}

func (c *Controller) handleEvent(cc fx.ControlContext, msg *eventMsg) {
	if msg.stopAll {
		c.Mixer.Reset()
		c.drive(cc.Time(), 0, 0, true)
		return
	}
	switch ev := msg.event.(type) {
	case device.AxisEvent:
		if c.Mixer.Axis(ev.Index(), ev.Value()) {
			left, right := c.Mixer.Power()
			c.drive(cc.Time(), left, right, false)
		}
	case device.ButtonEvent:
		if !ev.Pressed() || ev.IsInit() {
			return
		}
		switch ev.Index() {
		case c.HaltButton:
			c.Mixer.Reset()
			c.setPower(0, 0)
			c.lights = false
			c.command(&rover.Halt{})
		case c.LightsButton:
			c.lights = !c.lights
			var level int32
			if c.lights {
				level = 1
			}
			c.command(&rover.LightsSet{Left: level, Right: level})
		}
	}
}

func (c *Controller) setPower(left, right int) {
	c.left, c.right = left, right
	c.status.Left, c.status.Right = int32(left), int32(right)
	c.statusChanged = true
}

func (c *Controller) drive(now time.Time, left, right int, force bool) {
	if !force && left == c.left && right == c.right {
		return
	}
	c.setPower(left, right)
	c.sendMotors(now)
}

func (c *Controller) sendMotors(now time.Time) {
	c.sentAt = now
	cmd := &rover.MotorsSet{Left: int32(c.left), Right: int32(c.right)}
	if c.AutoStop > 0 && (c.left != 0 || c.right != 0) {
		cmd.AutoStopMs = uint32(c.AutoStop / time.Millisecond)
	}
	c.command(cmd)
}

// keepAlive repeats a non-zero command before the rover side auto stop
// expires.
func (c *Controller) keepAlive(now time.Time) {
	if c.AutoStop <= 0 || (c.left == 0 && c.right == 0) || c.conn == nil {
		return
	}
	if now.Sub(c.sentAt) >= c.AutoStop/2 {
		c.sendMotors(now)
	}
}

func (c *Controller) command(msg fx.Message) {
	if c.conn == nil {
		glog.V(2).Infof("not connected, dropped %T", msg)
		return
	}
	c.conn.do(msg)
}

func (c *Controller) newConnector(registryURL string) (l1.Connector, error) {
	if c.NewConnector != nil {
		return c.NewConnector(registryURL)
	}
	conf := connenv.NewConfig()
	conf.RegistryURL = registryURL
	return conf.NewConnector()
}

func (c *Controller) disconnect() {
	if c.conn == nil {
		return
	}
	c.conn.do(&rover.MotorsSet{})
	c.conn.close()
	c.conn = nil
	c.status.Connection = nil
	c.statusChanged = true
}

func (c *Controller) connect(cc fx.ControlContext, msg *msgs.TeleopConnect) fx.Message {
	c.disconnect()
	if msg.Type == "" && msg.ID == "" {
		return l1msgs.NewCommandOK()
	}
	registryURL := msg.RegistryURL
	if registryURL == "" {
		registryURL = c.RegistryURL
	}
	ref := l1.ControllerRef{Type: msg.Type, ID: msg.ID}
	if !ref.IsValid() {
		return l1msgs.NewCommandErrFromMsg("controller ref invalid")
	}
	connector, err := c.newConnector(registryURL)
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	if c.conn, err = dial(cc.Context(), connector, ref); err != nil {
		return l1msgs.NewCommandErr(err)
	}
	glog.Infof("connected to %s", ref.Name())
	c.status.Connection = &msgs.TeleopConnect{RegistryURL: registryURL, Type: ref.Type, ID: ref.ID}
	c.statusChanged = true
	return l1msgs.NewCommandOK()
}

type statusMsg struct {
	device *msgs.TeleopDevice
}

func (m *statusMsg) NewMessage() fx.Message { return &statusMsg{} }

type eventMsg struct {
	event   device.Event
	stopAll bool
}

func (m *eventMsg) NewMessage() fx.Message { return &eventMsg{} }

// connection runs the transport of one rover connection in its own loop.
type connection struct {
	ref    l1.ControllerRef
	conn   l1.ControllerConn
	cancel context.CancelFunc
}

func dial(ctx context.Context, connector l1.Connector, ref l1.ControllerRef) (*connection, error) {
	ctx, cancel := context.WithCancel(ctx)
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return nil, err
	}
	c := &connection{ref: ref, conn: conn, cancel: cancel}
	if adder, ok := conn.(fx.LoopAdder); ok {
		loop := fx.NewLoop().Add(adder)
		go func() {
			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				glog.Errorf("%s: %v", ref.Name(), err)
			}
		}()
	}
	return c, nil
}

func (c *connection) do(msg fx.Message) {
	future := c.conn.DoCommand(msg)
	go func() {
		if res := <-future.ResultChan(); res.Err != nil {
			glog.Warningf("%s: %T: %v", c.ref.Name(), msg, res.Err)
		}
	}()
}

func (c *connection) close() {
	c.cancel()
}
