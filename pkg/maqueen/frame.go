package maqueen

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Frame is one outbound command. The first byte is the register opcode.
// A Frame is never modified after it is enqueued.
type Frame []byte

// Opcode returns the target register.
func (f Frame) Opcode() byte {
	if len(f) == 0 {
		return 0
	}
	return f[0]
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	parts := make([]string, len(f))
	for n, b := range f {
		parts[n] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// MotorPower is signed motor power per side, negative means reverse.
type MotorPower struct {
	Left  int
	Right int
}

// Encoders are the raw wheel encoder counters.
type Encoders struct {
	Left  uint16
	Right uint16
}

// Compensations are the per-side speed compensation values.
type Compensations struct {
	Left  int
	Right int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ClampPower limits signed power to [-MaxMotorPower, MaxMotorPower].
func ClampPower(v int) int {
	return clamp(v, -MaxMotorPower, MaxMotorPower)
}

// magnitude is |v| limited to MaxMotorPower. Clamping first keeps abs
// away from the most negative int.
func magnitude(v int) int {
	return abs(ClampPower(v))
}

func encodeMotor(v int) (dir, mag byte) {
	dir = DirForward
	if v < 0 {
		dir = DirReverse
	}
	return dir, byte(magnitude(v))
}

func decodeMotor(dir, mag byte) int {
	if dir == DirReverse {
		return -int(mag)
	}
	return int(mag)
}

// MotorFrame sets both motors.
func MotorFrame(left, right int) Frame {
	dirL, magL := encodeMotor(left)
	dirR, magR := encodeMotor(right)
	return Frame{RegMotor, dirL, magL, dirR, magR}
}

// LightFrame sets both headlights, each clamped to [0, max].
func LightFrame(left, right, max int) Frame {
	return Frame{RegLights, byte(clamp(left, 0, max)), byte(clamp(right, 0, max))}
}

// EncoderResetFrame zeroes both encoder counters.
func EncoderResetFrame() Frame {
	return Frame{RegEncoderReset, 0, 0, 0, 0}
}

// CompensationFrame sets both compensation values.
func CompensationFrame(left, right int) Frame {
	return Frame{RegCompensation,
		byte(magnitude(left)),
		byte(magnitude(right)),
	}
}

// PIDFrame enables or disables the on-board speed regulator.
func PIDFrame(enable bool) Frame {
	var v byte
	if enable {
		v = 1
	}
	return Frame{RegPID, v}
}

type motorBlock struct {
	motors        MotorPower
	encoders      Encoders
	compensations Compensations
	pid           bool
}

// decodeMotorBlock parses dirL magL dirR magR encL(u16) encR(u16) compL compR pid.
// Trailing bytes of the block are reserved.
func decodeMotorBlock(b []byte) (blk motorBlock, err error) {
	if len(b) < 11 {
		return blk, fmt.Errorf("%w: motor block %d bytes", ErrBadBlock, len(b))
	}
	blk.motors.Left = decodeMotor(b[0], b[1])
	blk.motors.Right = decodeMotor(b[2], b[3])
	blk.encoders.Left = binary.BigEndian.Uint16(b[4:])
	blk.encoders.Right = binary.BigEndian.Uint16(b[6:])
	blk.compensations.Left = int(b[8])
	blk.compensations.Right = int(b[9])
	blk.pid = b[10] != 0
	return blk, nil
}

type groundBlock struct {
	line   [MaxGroundChannels]bool
	analog [MaxGroundChannels]uint16
}

// decodeGroundBlock parses lineMask a0..a5(u16).
func decodeGroundBlock(b []byte) (blk groundBlock, err error) {
	if len(b) < 1+2*MaxGroundChannels {
		return blk, fmt.Errorf("%w: ground block %d bytes", ErrBadBlock, len(b))
	}
	mask := b[0]
	for i := 0; i < MaxGroundChannels; i++ {
		blk.line[i] = mask&(1<<uint(i)) != 0
		blk.analog[i] = binary.BigEndian.Uint16(b[1+2*i:])
	}
	return blk, nil
}
