package maqueen_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/maqueen.go/pkg/bus/bustest"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/sim/rover"
)

type testEnv struct {
	clock  *clock.Mock
	fake   *bustest.Fake
	rover  *rover.Device
	bridge *maqueen.Bridge
}

func newTestEnv(t *testing.T, proto maqueen.Protocol) *testEnv {
	env := &testEnv{clock: clock.NewMock(), fake: bustest.New()}
	env.rover = rover.New(env.clock)
	env.fake.Attach(maqueen.DefaultAddress, env.rover)
	var err error
	env.bridge, err = maqueen.New(env.fake, maqueen.Config{
		Protocol: proto,
		FrameGap: -1,
		Clock:    env.clock,
	})
	require.NoError(t, err)
	return env
}

func (e *testEnv) poll(t *testing.T) {
	require.NoError(t, e.bridge.PollOnce(context.Background()))
}

func TestNewQueuesDoubleHalt(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	require.Equal(t, 4, env.bridge.Pending())
	require.Equal(t, maqueen.Idle, env.bridge.State())
	env.poll(t)
	halt := []maqueen.Frame{maqueen.MotorFrame(0, 0), maqueen.LightFrame(0, 0, 7)}
	require.Equal(t, append(halt, halt...), env.rover.Frames())
	require.Zero(t, env.bridge.Pending())
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := maqueen.New(nil, maqueen.Config{})
	require.Error(t, err)
	_, err = maqueen.New(bustest.New(), maqueen.Config{Protocol: maqueen.Protocol{Name: "odd"}})
	require.ErrorIs(t, err, maqueen.ErrUnknownProtocol)
}

func TestStickyMotors(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.poll(t)
	env.rover.ClearFrames()

	require.True(t, env.bridge.Drive(10, 10))
	require.True(t, env.bridge.SetMotors(maqueen.MotorCommand{Right: maqueen.Int(5)}))
	require.True(t, env.bridge.SetMotors(maqueen.MotorCommand{Left: maqueen.Int(-400)}))
	env.poll(t)
	require.Equal(t, []maqueen.Frame{
		maqueen.MotorFrame(10, 10),
		maqueen.MotorFrame(10, 5),
		maqueen.MotorFrame(-255, 5),
	}, env.rover.Frames())
	require.Equal(t, maqueen.MotorPower{Left: -255, Right: 5}, env.bridge.CommandedMotors())
}

func TestFreshness(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	m, fresh := env.bridge.Motors()
	require.False(t, fresh)
	require.Equal(t, maqueen.MotorPower{}, m)

	env.bridge.Drive(30, -30)
	env.poll(t)
	m, fresh = env.bridge.Motors()
	require.True(t, fresh)
	require.Equal(t, maqueen.MotorPower{Left: 30, Right: -30}, m)
	m, fresh = env.bridge.Motors()
	require.False(t, fresh)
	require.Equal(t, maqueen.MotorPower{Left: 30, Right: -30}, m)

	env.rover.SetGround(0x2a, 1, 2, 3, 4, 5, 6)
	env.poll(t)
	first, fresh := env.bridge.GroundLine()
	require.True(t, fresh)
	second, fresh := env.bridge.GroundLine()
	require.False(t, fresh)
	require.Equal(t, first, second)

	analog, fresh := env.bridge.GroundAnalog()
	require.True(t, fresh)
	require.Equal(t, []uint16{1, 2, 3, 4, 5, 6}, analog)
}

func TestGroundLineChannels(t *testing.T) {
	testCases := []struct {
		proto  maqueen.Protocol
		line   []bool
		analog []uint16
	}{
		{maqueen.V1, []bool{true, false, true, false, false, false}, []uint16{9, 8, 7, 6, 5, 4}},
		{maqueen.V2, []bool{true, false, true, false, false}, []uint16{9, 8, 7, 6, 5}},
	}
	for _, tc := range testCases {
		t.Run(tc.proto.Name, func(t *testing.T) {
			env := newTestEnv(t, tc.proto)
			env.rover.SetGround(0x05, 9, 8, 7, 6, 5, 4)
			env.poll(t)
			line, fresh := env.bridge.GroundLine()
			require.True(t, fresh)
			require.Equal(t, tc.line, line)
			analog, _ := env.bridge.GroundAnalog()
			require.Equal(t, tc.analog, analog)
		})
	}
}

func TestLightsClamp(t *testing.T) {
	testCases := []struct {
		proto       maqueen.Protocol
		left, right int
		expL, expR  int
	}{
		{maqueen.V1, 3, 9, 3, 7},
		{maqueen.V2, 3, 9, 1, 1},
		{maqueen.V1, -2, 4, 0, 4},
	}
	for _, tc := range testCases {
		t.Run(tc.proto.Name, func(t *testing.T) {
			env := newTestEnv(t, tc.proto)
			require.True(t, env.bridge.SetLights(tc.left, tc.right))
			l, r := env.bridge.Lights()
			require.Equal(t, tc.expL, l)
			require.Equal(t, tc.expR, r)
			env.poll(t)
			l, r = env.rover.Lights()
			require.Equal(t, tc.expL, l)
			require.Equal(t, tc.expR, r)
		})
	}
}

func TestReadFailureKeepsCache(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.bridge.Drive(100, 100)
	env.rover.SetGround(0x3f, 1, 1, 1, 1, 1, 1)
	env.poll(t)
	before, freshBefore := env.bridge.Snapshot()

	env.bridge.Drive(-1, -1)
	env.rover.SetGround(0, 0, 0, 0, 0, 0, 0)
	boom := errors.New("nack")
	env.fake.FailWhen(func(t bustest.Transaction) error {
		if len(t.W) == 1 && t.W[0] == maqueen.RegGround {
			return boom
		}
		return nil
	})
	err := env.bridge.PollOnce(context.Background())
	require.ErrorIs(t, err, boom)

	after, freshAfter := env.bridge.Snapshot()
	require.Equal(t, before, after)
	require.Equal(t, freshBefore, freshAfter)
	require.Contains(t, env.bridge.LastErrorMessage(), "nack")
	require.Empty(t, env.bridge.LastErrorMessage())
	require.Equal(t, maqueen.MotorPower{Left: -1, Right: -1}, env.rover.Motors())

	env.fake.Heal()
	env.poll(t)
	m, fresh := env.bridge.Motors()
	require.True(t, fresh)
	require.Equal(t, maqueen.MotorPower{Left: -1, Right: -1}, m)
}

func TestWriteFailureDropsCycle(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.poll(t)
	env.rover.ClearFrames()

	env.bridge.Drive(1, 1)
	env.bridge.SetLights(2, 2)
	env.bridge.Drive(3, 3)
	env.fake.FailWhen(func(t bustest.Transaction) error {
		if len(t.W) > 1 && t.W[0] == maqueen.RegLights {
			return errors.New("bus busy")
		}
		return nil
	})
	require.NoError(t, env.bridge.PollOnce(context.Background()))
	require.Equal(t, []maqueen.Frame{maqueen.MotorFrame(1, 1)}, env.rover.Frames())
	require.Zero(t, env.bridge.Pending())
	require.Contains(t, env.bridge.LastErrorMessage(), "bus busy")

	env.fake.Heal()
	env.poll(t)
	require.Len(t, env.rover.Frames(), 1)
}

func TestExtendedOperations(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	require.True(t, env.bridge.SetPID(true))
	require.True(t, env.bridge.SetCompensations(maqueen.CompensationCommand{Left: maqueen.Int(-300), Right: maqueen.Int(7)}))
	require.True(t, env.bridge.SetCompensations(maqueen.CompensationCommand{Right: maqueen.Int(9)}))
	env.bridge.Drive(255, 255)
	env.poll(t)
	env.clock.Add(time.Second)
	env.poll(t)

	require.True(t, env.rover.PID())
	require.Equal(t, maqueen.Compensations{Left: 255, Right: 9}, env.rover.Compensations())
	pid, fresh := env.bridge.PID()
	require.True(t, pid)
	require.True(t, fresh)
	comps, _ := env.bridge.Compensations()
	require.Equal(t, maqueen.Compensations{Left: 255, Right: 9}, comps)
	enc, fresh := env.bridge.Encoders()
	require.True(t, fresh)
	require.NotZero(t, enc.Left)

	require.True(t, env.bridge.ResetEncoders())
	env.poll(t)
	enc, _ = env.bridge.Encoders()
	require.Equal(t, maqueen.Encoders{}, enc)
}

func TestUnsupportedOperations(t *testing.T) {
	env := newTestEnv(t, maqueen.V2)
	pending := env.bridge.Pending()
	require.False(t, env.bridge.ResetEncoders())
	require.Contains(t, env.bridge.LastErrorMessage(), "not supported")
	require.False(t, env.bridge.SetPID(true))
	require.False(t, env.bridge.SetCompensations(maqueen.CompensationCommand{Left: maqueen.Int(1)}))
	require.Equal(t, pending, env.bridge.Pending())

	env.poll(t)
	_, fresh := env.bridge.Encoders()
	require.False(t, fresh)
}

func TestTextArgs(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	require.False(t, env.bridge.SetMotorsArgs("fast"))
	require.Contains(t, env.bridge.LastErrorMessage(), "invalid arguments")
	require.False(t, env.bridge.SetLightsArgs("1", "x"))
	require.NotEmpty(t, env.bridge.LastErrorMessage())
	require.Equal(t, 4, env.bridge.Pending())

	require.True(t, env.bridge.SetMotorsArgs("20", "20"))
	require.True(t, env.bridge.SetMotorsArgs("-", "-7"))
	require.Equal(t, maqueen.MotorPower{Left: 20, Right: -7}, env.bridge.CommandedMotors())
	require.True(t, env.bridge.SetLightsArgs("5", "6"))
}

func TestParseMotorArgs(t *testing.T) {
	testCases := []struct {
		args     []string
		left     *int
		right    *int
		autoStop time.Duration
		bad      bool
	}{
		{args: []string{"1", "2"}, left: maqueen.Int(1), right: maqueen.Int(2)},
		{args: []string{"-", "-3"}, right: maqueen.Int(-3)},
		{args: []string{"5", "5", "1.5"}, left: maqueen.Int(5), right: maqueen.Int(5), autoStop: 1500 * time.Millisecond},
		{args: []string{"5", "5", "200ms"}, left: maqueen.Int(5), right: maqueen.Int(5), autoStop: 200 * time.Millisecond},
		{args: []string{"5"}, bad: true},
		{args: []string{"5", "5", "-1"}, bad: true},
		{args: []string{"a", "5"}, bad: true},
		{args: []string{"1", "2", "3", "4"}, bad: true},
	}
	for _, tc := range testCases {
		cmd, err := maqueen.ParseMotorArgs(tc.args)
		if tc.bad {
			require.ErrorIs(t, err, maqueen.ErrInvalidArgs, "%v", tc.args)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.left, cmd.Left)
		require.Equal(t, tc.right, cmd.Right)
		require.Equal(t, tc.autoStop, cmd.AutoStop)
	}
}

func TestParseCompensationArgs(t *testing.T) {
	cmd, err := maqueen.ParseCompensationArgs([]string{"-", "12"})
	require.NoError(t, err)
	require.Nil(t, cmd.Left)
	require.Equal(t, maqueen.Int(12), cmd.Right)

	_, err = maqueen.ParseCompensationArgs([]string{"12"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)
	_, err = maqueen.ParseCompensationArgs([]string{"1", "x"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)
}

func TestAutoStop(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	done := make(chan bool, 1)
	go func() {
		done <- env.bridge.SetMotors(maqueen.MotorCommand{
			Left: maqueen.Int(80), Right: maqueen.Int(80), AutoStop: time.Second,
		})
	}()
	var ok bool
	require.Eventually(t, func() bool {
		env.clock.Add(100 * time.Millisecond)
		select {
		case ok = <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	require.True(t, ok)
	require.Equal(t, maqueen.MotorPower{}, env.bridge.CommandedMotors())
	env.poll(t)
	frames := env.rover.Frames()
	require.Equal(t, maqueen.MotorFrame(80, 80), frames[len(frames)-2])
	require.Equal(t, maqueen.MotorFrame(0, 0), frames[len(frames)-1])
}

func TestRunLoop(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.bridge.Start()
	env.bridge.Drive(50, -50)
	require.Eventually(t, func() bool {
		env.clock.Add(maqueen.DefaultInterval)
		m, fresh := env.bridge.Motors()
		return fresh && m == maqueen.MotorPower{Left: 50, Right: -50}
	}, time.Second, time.Millisecond)

	require.NoError(t, env.bridge.Close())
	require.Equal(t, maqueen.Stopped, env.bridge.State())
	require.Equal(t, maqueen.MotorPower{}, env.rover.Motors())
	require.NoError(t, env.bridge.Stop())
}

func TestRunEscalates(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.bridge, _ = maqueen.New(env.fake, maqueen.Config{
		FrameGap:        -1,
		MaxReadFailures: 3,
		Clock:           env.clock,
	})
	env.fake.FailAll(errors.New("unplugged"))
	env.bridge.Start()
	done := env.bridge.Done()
	require.Eventually(t, func() bool {
		env.clock.Add(maqueen.DefaultInterval)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	require.Equal(t, maqueen.Stopped, env.bridge.State())

	pending := env.bridge.Pending()
	env.bridge.LastErrorMessage()
	require.False(t, env.bridge.Drive(5, 5))
	require.Contains(t, env.bridge.LastErrorMessage(), "poll loop stopped")
	require.False(t, env.bridge.SetLights(1, 1))
	require.False(t, env.bridge.Halt())
	require.False(t, env.bridge.ResetEncoders())
	require.False(t, env.bridge.SetCompensations(maqueen.CompensationCommand{Left: maqueen.Int(3)}))
	require.Equal(t, pending, env.bridge.Pending())
	require.Equal(t, maqueen.MotorPower{}, env.bridge.CommandedMotors())
	l, r := env.bridge.Lights()
	require.Zero(t, l+r)

	require.ErrorIs(t, env.bridge.Stop(), maqueen.ErrTooManyFailures)
	require.Nil(t, env.bridge.Done())
	require.NoError(t, env.bridge.Stop())
}

func TestRestartAfterStop(t *testing.T) {
	env := newTestEnv(t, maqueen.V1)
	env.bridge.Start()
	require.NoError(t, env.bridge.Stop())
	require.False(t, env.bridge.Drive(20, 20))

	env.bridge.Start()
	require.NotEqual(t, maqueen.Stopped, env.bridge.State())
	require.True(t, env.bridge.Drive(20, 20))
	require.Eventually(t, func() bool {
		env.clock.Add(maqueen.DefaultInterval)
		return env.rover.Motors() == maqueen.MotorPower{Left: 20, Right: 20}
	}, time.Second, time.Millisecond)
	require.NoError(t, env.bridge.Close())
}
