package selftest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/drivers/ws2812"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/mbits"
	"github.com/robotalks/maqueen.go/pkg/sim/rover"
)

func startRover(t *testing.T, proto maqueen.Protocol) (*rover.Device, *maqueen.Bridge) {
	dev := rover.New(nil)
	dev.SetGround(0x05, 100, 2000, 300)
	bridge, err := maqueen.New(bus.NewShared(dev.Bus(maqueen.DefaultAddress)), maqueen.Config{
		Protocol: proto,
		Interval: 5 * time.Millisecond,
		FrameGap: -1,
	})
	require.NoError(t, err)
	bridge.Start()
	return dev, bridge
}

func TestRoverOnly(t *testing.T) {
	dev, bridge := startRover(t, maqueen.V1)
	var out bytes.Buffer
	s := &Suite{Bridge: bridge, Out: &out, Step: 50 * time.Millisecond, Samples: 2}
	results := s.Run(context.Background())
	require.NoError(t, bridge.Stop())

	passed, skipped, failed := Summary(results)
	require.Zero(t, failed, out.String())
	require.Equal(t, 4, passed)
	require.Equal(t, 6, skipped)
	require.Equal(t, "motors", results[2].Name)
	require.Contains(t, out.String(), "line [true false true false false false]")

	require.Equal(t, maqueen.MotorPower{}, dev.Motors())
	l, r := dev.Lights()
	require.Zero(t, l+r)
}

func TestEncodersSkippedOnV2(t *testing.T) {
	_, bridge := startRover(t, maqueen.V2)
	defer bridge.Stop()
	s := &Suite{Bridge: bridge, Step: time.Millisecond}
	s.defaults()
	require.ErrorIs(t, s.encoders(context.Background()), ErrSkipped)
}

type level int32

func (l level) Read() (analog.Sample, error) {
	return analog.Sample{Raw: int32(l)}, nil
}

type countConn struct{ n int }

func (c *countConn) String() string      { return "count" }
func (c *countConn) Duplex() conn.Duplex { return conn.Half }

func (c *countConn) Tx(w, r []byte) error {
	c.n++
	return nil
}

func TestBoardSteps(t *testing.T) {
	_, bridge := startRover(t, maqueen.V2)
	defer bridge.Stop()
	spk := &gpiotest.Pin{N: "SPK"}
	matrix := &countConn{}
	board := &mbits.Board{
		A:         &gpiotest.Pin{N: "A", L: gpio.Low},
		B:         &gpiotest.Pin{N: "B", L: gpio.High},
		ActiveLow: true,
		Mic:       level(1800),
		Speaker:   spk,
		Matrix:    ws2812.New(matrix, 4),
	}
	var out bytes.Buffer
	s := &Suite{Bridge: bridge, Board: board, Out: &out, Step: time.Millisecond, Samples: 3}
	s.defaults()
	ctx := context.Background()

	require.NoError(t, s.speaker(ctx))
	require.Equal(t, gpio.Low, spk.L)
	require.NoError(t, s.microphone(ctx))
	require.Contains(t, out.String(), "level 1800..1800")
	require.NoError(t, s.buttons(ctx))
	require.Contains(t, out.String(), "A=true B=false")
	require.ErrorIs(t, s.motion(ctx), ErrSkipped)
	require.ErrorIs(t, s.temperature(ctx), ErrSkipped)
	require.NoError(t, s.display(ctx))
	require.Equal(t, 7, matrix.n)
}

func TestCancelled(t *testing.T) {
	_, bridge := startRover(t, maqueen.V1)
	defer bridge.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Suite{Bridge: bridge}
	require.Empty(t, s.Run(ctx))
}
