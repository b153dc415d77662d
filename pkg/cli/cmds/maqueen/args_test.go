package maqueen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
)

func TestMotorsMsg(t *testing.T) {
	m, err := MotorsMsg([]string{"-", "-80", "250ms"})
	require.NoError(t, err)
	require.Equal(t, &msgs.MotorsSet{Right: -80, KeepLeft: true, AutoStopMs: 250}, m)

	_, err = MotorsMsg([]string{"x", "1"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)
}

func TestSimpleMsgs(t *testing.T) {
	lights, err := LightsMsg([]string{"3", "0"})
	require.NoError(t, err)
	require.Equal(t, &msgs.LightsSet{Left: 3}, lights)

	comp, err := CompensationsMsg([]string{"10", "-"})
	require.NoError(t, err)
	require.Equal(t, &msgs.CompensationsSet{Left: 10, KeepRight: true}, comp)

	pid, err := PIDMsg([]string{"ON"})
	require.NoError(t, err)
	require.True(t, pid.Enable)
	_, err = PIDMsg([]string{"maybe"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)

	tone, err := ToneMsg([]string{"440", "1s"})
	require.NoError(t, err)
	require.Equal(t, &msgs.ToneSet{FrequencyHz: 440, DurationMs: 1000}, tone)
	_, err = ToneMsg([]string{"-5"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)
}

func TestDisplayMsg(t *testing.T) {
	m, err := DisplayMsg([]string{"FF8000"})
	require.NoError(t, err)
	require.Equal(t, "#ff8000", m.Color)

	_, err = DisplayMsg([]string{"orange"})
	require.ErrorIs(t, err, maqueen.ErrInvalidArgs)
}

func TestRGBMsg(t *testing.T) {
	m, err := RGBMsg([]string{"#00FF00"})
	require.NoError(t, err)
	require.Equal(t, "#00ff00", m.Color)
	require.Empty(t, m.Pixels)

	m, err = RGBMsg([]string{"0000ff", "0", "3"})
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 3}, m.Pixels)

	for _, args := range [][]string{nil, {"blue"}, {"#0000ff", "-1"}, {"#0000ff", "x"}} {
		_, err = RGBMsg(args)
		require.ErrorIs(t, err, maqueen.ErrInvalidArgs, "%v", args)
	}
}
