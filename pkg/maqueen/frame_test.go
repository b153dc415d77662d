package maqueen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMotorFrame(t *testing.T) {
	testCases := []struct {
		name        string
		left, right int
		expect      Frame
	}{
		{"zero", 0, 0, Frame{0x00, 1, 0, 1, 0}},
		{"forward", 10, 200, Frame{0x00, 1, 10, 1, 200}},
		{"reverse", -10, -255, Frame{0x00, 2, 10, 2, 255}},
		{"clamp", 300, -1000, Frame{0x00, 1, 255, 2, 255}},
		{"extremes", math.MaxInt, math.MinInt, Frame{0x00, 1, 255, 2, 255}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, MotorFrame(tc.left, tc.right))
		})
	}
}

func TestMotorClampProperty(t *testing.T) {
	for m := -1000; m <= 1000; m += 7 {
		dir, mag := encodeMotor(m)
		require.True(t, int(mag) >= 0 && int(mag) <= MaxMotorPower)
		if m < 0 {
			require.Equal(t, DirReverse, dir)
		} else {
			require.Equal(t, DirForward, dir)
		}
		if abs(m) <= MaxMotorPower {
			require.Equal(t, m, decodeMotor(dir, mag))
		}
	}
}

func TestLightFrame(t *testing.T) {
	require.Equal(t, Frame{0x0B, 3, 7}, LightFrame(3, 9, V1.MaxLights))
	require.Equal(t, Frame{0x0B, 1, 1}, LightFrame(3, 9, V2.MaxLights))
	require.Equal(t, Frame{0x0B, 0, 1}, LightFrame(-4, 1, V2.MaxLights))
}

func TestExtendedFrames(t *testing.T) {
	require.Equal(t, Frame{0x04, 0, 0, 0, 0}, EncoderResetFrame())
	require.Equal(t, Frame{0x08, 255, 12}, CompensationFrame(-300, 12))
	require.Equal(t, Frame{0x08, 255, 255}, CompensationFrame(math.MinInt, math.MaxInt))
	require.Equal(t, Frame{0x0A, 1}, PIDFrame(true))
	require.Equal(t, Frame{0x0A, 0}, PIDFrame(false))
	require.Equal(t, byte(0x0A), PIDFrame(true).Opcode())
	require.Equal(t, "0a 01", PIDFrame(true).String())
}

func TestDecodeMotorBlock(t *testing.T) {
	b := make([]byte, MotorBlockSize)
	copy(b, []byte{2, 30, 1, 40, 0x12, 0x34, 0xff, 0xfe, 5, 6, 1})
	blk, err := decodeMotorBlock(b)
	require.NoError(t, err)
	require.Equal(t, MotorPower{Left: -30, Right: 40}, blk.motors)
	require.Equal(t, Encoders{Left: 0x1234, Right: 0xfffe}, blk.encoders)
	require.Equal(t, Compensations{Left: 5, Right: 6}, blk.compensations)
	require.True(t, blk.pid)

	_, err = decodeMotorBlock(b[:10])
	require.ErrorIs(t, err, ErrBadBlock)
}

func TestDecodeGroundBlock(t *testing.T) {
	b := []byte{0x05, 0, 1, 0, 2, 0, 3, 0x01, 0x00, 0, 5, 0xff, 0xff, 0}
	blk, err := decodeGroundBlock(b)
	require.NoError(t, err)
	require.Equal(t, [MaxGroundChannels]bool{true, false, true, false, false, false}, blk.line)
	require.Equal(t, [MaxGroundChannels]uint16{1, 2, 3, 256, 5, 0xffff}, blk.analog)

	_, err = decodeGroundBlock(b[:12])
	require.ErrorIs(t, err, ErrBadBlock)
}

func TestProtocolByName(t *testing.T) {
	p, err := ProtocolByName("V2")
	require.NoError(t, err)
	require.Equal(t, V2, p)
	_, err = ProtocolByName("v3")
	require.ErrorIs(t, err, ErrUnknownProtocol)
}
