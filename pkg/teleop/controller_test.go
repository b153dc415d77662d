package teleop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	l1msgs "github.com/robotalks/maqueen.go/pkg/l1/msgs"
	rover "github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
	"github.com/robotalks/maqueen.go/pkg/teleop/device"
	"github.com/robotalks/maqueen.go/pkg/teleop/msgs"
)

type events struct {
	msgs []fx.Message
	lock sync.Mutex
}

func (e *events) SendEvent(_ context.Context, msg fx.Message) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.msgs = append(e.msgs, msg)
	return nil
}

func (e *events) last() *msgs.TeleopStatus {
	e.lock.Lock()
	defer e.lock.Unlock()
	for n := len(e.msgs) - 1; n >= 0; n-- {
		if st, ok := e.msgs[n].(*msgs.TeleopStatus); ok {
			return st
		}
	}
	return nil
}

type done chan l1.Result

func (d done) ResultChan() <-chan l1.Result { return d }

type roverConn struct {
	cmds []fx.Message
	lock sync.Mutex
}

func (r *roverConn) DoCommand(msg fx.Message) l1.CommandFuture {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.cmds = append(r.cmds, msg)
	d := make(done, 1)
	d <- l1.Result{Msg: l1msgs.NewCommandOK()}
	close(d)
	return d
}

func (r *roverConn) take() []fx.Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	cmds := r.cmds
	r.cmds = nil
	return cmds
}

type connector struct {
	conn *roverConn
	url  string
	refs []l1.ControllerRef
}

func (c *connector) Discover(context.Context) ([]l1.ControllerInfo, error) { return nil, nil }

func (c *connector) Connect(_ context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	if ref.ID == "offline" {
		return nil, errors.New("offline")
	}
	c.refs = append(c.refs, ref)
	return c.conn, nil
}

type command struct {
	msg   fx.Message
	reply fx.Message
}

func (c *command) Msg() fx.Message { return c.msg }

func (c *command) Done(reply fx.Message) error {
	c.reply = reply
	return nil
}

type testEnv struct {
	t      *testing.T
	clock  *clock.Mock
	events *events
	rover  *roverConn
	conn   *connector
	ctl    *Controller
	loop   *fx.Loop
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{t: t, clock: clock.NewMock(), events: &events{}, rover: &roverConn{}}
	env.conn = &connector{conn: env.rover}
	env.ctl = NewController(env.events, "mqtt://localhost:1883/robo/")
	env.ctl.Clock = env.clock
	env.ctl.Mixer = DefaultMixer()
	env.ctl.HaltButton, env.ctl.LightsButton = 0, 1
	env.ctl.AutoStop = 500 * time.Millisecond
	env.ctl.NewConnector = func(url string) (l1.Connector, error) {
		env.conn.url = url
		return env.conn, nil
	}
	env.loop = &fx.Loop{Clock: env.clock}
	env.loop.Add(env.ctl)
	t.Cleanup(func() { env.ctl.Close() })
	return env
}

func (env *testEnv) do(msg fx.Message) fx.Message {
	cmd := &command{msg: msg}
	env.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	env.loop.RunIteration(context.Background())
	require.NotNil(env.t, cmd.reply)
	return cmd.reply
}

func (env *testEnv) event(ev device.Event) {
	env.loop.PostMessage(&eventMsg{event: ev})
	env.loop.RunIteration(context.Background())
}

func TestConnectAndDrive(t *testing.T) {
	env := newTestEnv(t)
	require.IsType(t, &l1msgs.CommandOK{}, env.do(&msgs.TeleopConnect{Type: "maqueen", ID: "r1"}))
	require.Equal(t, []l1.ControllerRef{{Type: "maqueen", ID: "r1"}}, env.conn.refs)
	require.Equal(t, "mqtt://localhost:1883/robo/", env.conn.url)
	st := env.events.last()
	require.NotNil(t, st)
	require.Equal(t, "r1", st.Connection.ID)

	env.event(device.Axis{Number: 1, Pos: -device.AxisMax})
	require.Equal(t, []fx.Message{&rover.MotorsSet{Left: 255, Right: 255, AutoStopMs: 500}}, env.rover.take())
	require.Equal(t, int32(255), env.events.last().Left)

	env.event(device.Axis{Number: 1, Pos: -device.AxisMax})
	env.event(device.Axis{Number: 4, Pos: 100})
	require.Empty(t, env.rover.take())

	env.clock.Add(250 * time.Millisecond)
	env.loop.RunIteration(context.Background())
	require.Equal(t, []fx.Message{&rover.MotorsSet{Left: 255, Right: 255, AutoStopMs: 500}}, env.rover.take())

	env.event(device.Axis{Number: 0, Pos: device.AxisMax})
	require.Equal(t, []fx.Message{&rover.MotorsSet{Left: 255, Right: 0, AutoStopMs: 500}}, env.rover.take())

	env.loop.PostMessage(&eventMsg{stopAll: true})
	env.loop.RunIteration(context.Background())
	require.Equal(t, []fx.Message{&rover.MotorsSet{}}, env.rover.take())

	env.clock.Add(time.Second)
	env.loop.RunIteration(context.Background())
	require.Empty(t, env.rover.take())
}

func TestButtons(t *testing.T) {
	env := newTestEnv(t)
	env.do(&msgs.TeleopConnect{Type: "maqueen", ID: "r1"})

	env.event(device.Button{Number: 1, Down: true})
	env.event(device.Button{Number: 1})
	env.event(device.Button{Number: 1, Down: true, Init: true})
	require.Equal(t, []fx.Message{&rover.LightsSet{Left: 1, Right: 1}}, env.rover.take())

	env.event(device.Axis{Number: 1, Pos: device.AxisMax})
	env.event(device.Button{Number: 0, Down: true})
	require.Equal(t, []fx.Message{
		&rover.MotorsSet{Left: -255, Right: -255, AutoStopMs: 500},
		&rover.Halt{},
	}, env.rover.take())
	require.Zero(t, env.events.last().Left)

	env.event(device.Button{Number: 1, Down: true})
	require.Equal(t, []fx.Message{&rover.LightsSet{Left: 1, Right: 1}}, env.rover.take())
}

func TestConnectErrors(t *testing.T) {
	env := newTestEnv(t)
	reply := env.do(&msgs.TeleopConnect{Type: "maqueen"})
	require.IsType(t, &l1msgs.CommandErr{}, reply)

	reply = env.do(&msgs.TeleopConnect{Type: "maqueen", ID: "offline"})
	require.EqualError(t, reply.(error), "offline")

	env.event(device.Axis{Number: 1, Pos: -device.AxisMax})
	require.Empty(t, env.rover.take())
	require.Equal(t, int32(255), env.events.last().Left)

	env.do(&msgs.TeleopConnect{Type: "maqueen", ID: "r1"})
	require.Empty(t, env.rover.take())
	require.IsType(t, &l1msgs.CommandOK{}, env.do(&msgs.TeleopConnect{}))
	require.Equal(t, []fx.Message{&rover.MotorsSet{}}, env.rover.take())
	require.Nil(t, env.events.last().Connection)
}

func TestTargetAndStatusQuery(t *testing.T) {
	env := newTestEnv(t)
	env.ctl.Target = l1.ControllerRef{Type: "maqueen", ID: "r2"}
	env.loop.PostMessage(&statusMsg{device: &msgs.TeleopDevice{Index: 0, Name: "pad", Axes: 8, Buttons: 11}})
	env.loop.RunIteration(context.Background())
	require.Equal(t, []l1.ControllerRef{{Type: "maqueen", ID: "r2"}}, env.conn.refs)

	reply := env.do(&msgs.TeleopStatusQuery{})
	st := reply.(*msgs.TeleopStatusReply).Status
	require.Equal(t, "pad", st.Device.Name)
	require.Equal(t, "r2", st.Connection.ID)

	env.loop.PostMessage(&statusMsg{device: &msgs.TeleopDevice{Index: noDevice}})
	env.loop.RunIteration(context.Background())
	require.Nil(t, env.events.last().Device)
}

type fakeDevice struct {
	events chan device.Event
	closed chan struct{}
	once   sync.Once
}

func (d *fakeDevice) Close() error {
	d.once.Do(func() { close(d.closed) })
	return nil
}

func (d *fakeDevice) Index() int       { return 3 }
func (d *fakeDevice) Name() string     { return "fake" }
func (d *fakeDevice) AxisCount() int   { return 2 }
func (d *fakeDevice) ButtonCount() int { return 2 }

func (d *fakeDevice) ReadEvent() (device.Event, error) {
	select {
	case ev, ok := <-d.events:
		if !ok {
			return nil, errors.New("unplugged")
		}
		return ev, nil
	case <-d.closed:
		return nil, errors.New("closed")
	}
}

func TestRunForwardsEvents(t *testing.T) {
	env := newTestEnv(t)
	js := &fakeDevice{events: make(chan device.Event), closed: make(chan struct{})}
	env.ctl.OpenDevice = func(index int) (device.Device, error) {
		require.Equal(t, -1, index)
		return js, nil
	}
	env.ctl.DeviceIndex = -1
	env.do(&msgs.TeleopConnect{Type: "maqueen", ID: "r1"})

	loop := fx.NewLoop().Add(env.ctl)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- loop.Run(ctx) }()

	js.events <- device.Axis{Number: 1, Pos: -device.AxisMax}
	require.Eventually(t, func() bool {
		st := env.events.last()
		return st != nil && st.Device != nil && st.Left == 255
	}, time.Second, 10*time.Millisecond)

	close(js.events)
	require.Eventually(t, func() bool {
		st := env.events.last()
		return st.Device == nil && st.Left == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-result, context.Canceled)
}
