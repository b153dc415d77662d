// Package rover simulates the Maqueen Plus rover controller at register
// level, for tests and for running the daemon without hardware.
package rover

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/sim"
)

// Defaults
const (
	DefaultWheelBase     = 95.0
	DefaultSpeedMax      = 300.0
	DefaultTicksPerMeter = 1000.0
)

// maxFrames bounds the recorded frame history.
const maxFrames = 4096

// Device answers the rover controller register protocol.
type Device struct {
	Drive         sim.DiffDrive
	TicksPerMeter float64

	clock    clock.Clock
	last     time.Time
	ptr      byte
	motors   maqueen.MotorPower
	encoders [2]float64
	comps    [2]byte
	pid      bool
	lights   [2]byte
	line     byte
	analog   [maqueen.MaxGroundChannels]uint16
	pose     sim.Pose2D
	frames   []maqueen.Frame
	rgb      []byte
	lock     sync.Mutex
}

// New creates a Device driven by clk, or the wall clock if nil.
func New(clk clock.Clock) *Device {
	if clk == nil {
		clk = clock.New()
	}
	return &Device{
		Drive: sim.DiffDrive{
			WheelBase: DefaultWheelBase,
			SpeedMax:  DefaultSpeedMax,
			PowerMax:  maqueen.MaxMotorPower,
		},
		TicksPerMeter: DefaultTicksPerMeter,
		clock:         clk,
		last:          clk.Now(),
	}
}

// Bus exposes the device as the only peripheral at addr on a bus.
func (d *Device) Bus(addr uint16) bus.Bus {
	return bus.Func(func(a uint16, w, r []byte) error {
		if a != addr {
			return fmt.Errorf("rover: no device at %#02x", a)
		}
		return d.Tx(w, r)
	})
}

// Tx implements bustest.Device.
func (d *Device) Tx(w, r []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.advance()
	if len(w) > 0 {
		d.ptr = w[0]
		if len(w) > 1 {
			if err := d.write(w[0], w[1:]); err != nil {
				return err
			}
			if len(d.frames) >= maxFrames {
				d.frames = append(d.frames[:0], d.frames[len(d.frames)-maxFrames/2:]...)
			}
			d.frames = append(d.frames, append(maqueen.Frame(nil), w...))
		}
	}
	if len(r) > 0 {
		return d.read(d.ptr, r)
	}
	return nil
}

func (d *Device) write(reg byte, data []byte) error {
	need := 0
	switch reg {
	case maqueen.RegMotor, maqueen.RegEncoderReset:
		need = 4
	case maqueen.RegCompensation, maqueen.RegLights:
		need = 2
	case maqueen.RegPID:
		need = 1
	default:
		return fmt.Errorf("rover: write to unknown register %#02x", reg)
	}
	if len(data) < need {
		return fmt.Errorf("rover: register %#02x expects %d bytes, got %d", reg, need, len(data))
	}
	switch reg {
	case maqueen.RegMotor:
		d.motors.Left = motorValue(data[0], data[1])
		d.motors.Right = motorValue(data[2], data[3])
	case maqueen.RegEncoderReset:
		d.encoders = [2]float64{}
	case maqueen.RegCompensation:
		d.comps = [2]byte{data[0], data[1]}
	case maqueen.RegPID:
		d.pid = data[0] != 0
	case maqueen.RegLights:
		d.lights = [2]byte{data[0], data[1]}
	}
	return nil
}

func (d *Device) read(reg byte, r []byte) error {
	var blk []byte
	switch reg {
	case maqueen.RegMotor:
		blk = make([]byte, maqueen.MotorBlockSize)
		blk[0], blk[1] = motorBytes(d.motors.Left)
		blk[2], blk[3] = motorBytes(d.motors.Right)
		binary.BigEndian.PutUint16(blk[4:], encoderValue(d.encoders[0]))
		binary.BigEndian.PutUint16(blk[6:], encoderValue(d.encoders[1]))
		blk[8], blk[9] = d.comps[0], d.comps[1]
		if d.pid {
			blk[10] = 1
		}
	case maqueen.RegGround:
		blk = make([]byte, maqueen.GroundBlockSize)
		blk[0] = d.line
		for i, v := range d.analog {
			binary.BigEndian.PutUint16(blk[1+2*i:], v)
		}
	default:
		return fmt.Errorf("rover: read from unknown register %#02x", reg)
	}
	n := copy(r, blk)
	for ; n < len(r); n++ {
		r[n] = 0
	}
	return nil
}

func (d *Device) advance() {
	now := d.clock.Now()
	dt := now.Sub(d.last)
	d.last = now
	if dt <= 0 {
		return
	}
	d.pose = d.Drive.Advance(d.pose, d.motors.Left, d.motors.Right, dt)
	ticksPerMM := d.TicksPerMeter / 1000
	d.encoders[0] += math.Abs(d.Drive.WheelSpeed(d.motors.Left)) * dt.Seconds() * ticksPerMM
	d.encoders[1] += math.Abs(d.Drive.WheelSpeed(d.motors.Right)) * dt.Seconds() * ticksPerMM
}

func motorValue(dir, mag byte) int {
	if dir == maqueen.DirReverse {
		return -int(mag)
	}
	return int(mag)
}

func motorBytes(v int) (dir, mag byte) {
	if v < 0 {
		return maqueen.DirReverse, byte(-v)
	}
	return maqueen.DirForward, byte(v)
}

func encoderValue(v float64) uint16 {
	return uint16(uint64(v) & 0xffff)
}

// SetGround sets the line mask and analog channel values.
func (d *Device) SetGround(mask byte, analog ...uint16) {
	d.lock.Lock()
	d.line = mask
	d.analog = [maqueen.MaxGroundChannels]uint16{}
	copy(d.analog[:], analog)
	d.lock.Unlock()
}

// Motors returns the motor power last written.
func (d *Device) Motors() maqueen.MotorPower {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.motors
}

// Lights returns the headlight values last written.
func (d *Device) Lights() (left, right int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return int(d.lights[0]), int(d.lights[1])
}

// PID reports the regulator state.
func (d *Device) PID() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.pid
}

// Compensations returns the compensation values last written.
func (d *Device) Compensations() maqueen.Compensations {
	d.lock.Lock()
	defer d.lock.Unlock()
	return maqueen.Compensations{Left: int(d.comps[0]), Right: int(d.comps[1])}
}

// Encoders returns the integrated encoder counters.
func (d *Device) Encoders() maqueen.Encoders {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.advance()
	return maqueen.Encoders{Left: encoderValue(d.encoders[0]), Right: encoderValue(d.encoders[1])}
}

// Pose returns the integrated pose.
func (d *Device) Pose() sim.Pose2D {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.advance()
	return d.pose
}

// Frames returns every command frame written, in order.
func (d *Device) Frames() []maqueen.Frame {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]maqueen.Frame(nil), d.frames...)
}

// ClearFrames forgets recorded frames.
func (d *Device) ClearFrames() {
	d.lock.Lock()
	d.frames = nil
	d.lock.Unlock()
}

// RGB is the conn the RGB strip is written to.
func (d *Device) RGB() conn.Conn {
	return rgbConn{d}
}

// RGBStream returns the last bit stream written to the RGB strip.
func (d *Device) RGBStream() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]byte(nil), d.rgb...)
}

type rgbConn struct{ d *Device }

func (c rgbConn) String() string { return "rover-rgb" }

func (c rgbConn) Duplex() conn.Duplex { return conn.Half }

func (c rgbConn) Tx(w, r []byte) error {
	c.d.lock.Lock()
	c.d.rgb = append(c.d.rgb[:0], w...)
	c.d.lock.Unlock()
	return nil
}
