// Package mpu6050 drives the InvenSense MPU6050/6500 family inertial sensor.
package mpu6050

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/bus"
)

// Addresses are probed in order when Config.Address is zero.
var Addresses = []uint16{0x68, 0x69}

const (
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regData        = 0x3B
	regPowerMgmt   = 0x6B
	regWhoAmI      = 0x75

	rangeMask = 0x18
	dataSize  = 14

	tempSensitivity = 340.0
	tempOffset      = 36.53
)

var whoAmIAnswers = []byte{0x68, 0x70, 0x71, 0x75, 0x40}

// Errors returned by the driver.
var (
	ErrNotFound       = errors.New("mpu6050: device not found")
	ErrConfigMismatch = errors.New("mpu6050: config read back mismatch")
)

// AccelRange is the accelerometer full scale.
type AccelRange byte

// Accelerometer full scales.
const (
	Accel2G  AccelRange = 0x00
	Accel4G  AccelRange = 0x08
	Accel8G  AccelRange = 0x10
	Accel16G AccelRange = 0x18
)

// LSB per g.
func (r AccelRange) sensitivity() float64 {
	return 16384 / float64(uint(1)<<(r>>3))
}

// GyroRange is the gyroscope full scale.
type GyroRange byte

// Gyroscope full scales.
const (
	Gyro250DPS  GyroRange = 0x00
	Gyro500DPS  GyroRange = 0x08
	Gyro1000DPS GyroRange = 0x10
	Gyro2000DPS GyroRange = 0x18
)

// LSB per °/s.
func (r GyroRange) sensitivity() float64 {
	return 131.2 / float64(uint(1)<<(r>>3))
}

// Vector is a 3-axis reading.
type Vector struct {
	X, Y, Z float64
}

// Norm returns the vector length.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector) sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Sample is one burst read.
type Sample struct {
	// Accel in g.
	Accel Vector
	// Gyro in °/s, with the calibration offset removed.
	Gyro        Vector
	Temperature physic.Temperature
}

// Config is optional; zero values select defaults.
type Config struct {
	// Address skips probing when set.
	Address uint16
	Accel   AccelRange
	Gyro    GyroRange
	// CalibrationSamples for the gyro offset, 256 if zero, negative skips.
	CalibrationSamples int
	// Settle is the wait between a config write and its read back, 5ms if
	// zero, negative skips.
	Settle time.Duration
}

// Dev is an MPU6050 family sensor.
type Dev struct {
	dev        bus.Dev
	whoAmI     byte
	settle     time.Duration
	accelScale float64
	gyroScale  float64
	gyroOffset Vector
}

// New probes, powers on and configures the sensor, then calibrates the gyro.
func New(b bus.Bus, conf Config) (*Dev, error) {
	if conf.CalibrationSamples == 0 {
		conf.CalibrationSamples = 256
	}
	if conf.Settle == 0 {
		conf.Settle = 5 * time.Millisecond
	}
	d := &Dev{settle: conf.Settle}
	candidates := Addresses
	if conf.Address != 0 {
		candidates = []uint16{conf.Address}
	}
	if !d.probe(b, candidates) {
		return nil, fmt.Errorf("%w at %#x", ErrNotFound, candidates)
	}
	if err := d.dev.WriteReg(regPowerMgmt, 0); err != nil {
		return nil, fmt.Errorf("mpu6050: power on: %w", err)
	}
	if err := d.SetGyroRange(conf.Gyro); err != nil {
		return nil, err
	}
	if err := d.SetAccelRange(conf.Accel); err != nil {
		return nil, err
	}
	if conf.CalibrationSamples > 0 {
		if err := d.Calibrate(conf.CalibrationSamples); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dev) probe(b bus.Bus, candidates []uint16) bool {
	for _, addr := range candidates {
		dev := bus.Dev{Bus: b, Addr: addr}
		var id [1]byte
		if err := dev.ReadReg(regWhoAmI, id[:]); err != nil {
			continue
		}
		for _, answer := range whoAmIAnswers {
			if id[0] == answer {
				d.dev, d.whoAmI = dev, id[0]
				return true
			}
		}
	}
	return false
}

func (d *Dev) writeVerified(reg, val byte) error {
	if err := d.dev.WriteReg(reg, val); err != nil {
		return err
	}
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
	var back [1]byte
	if err := d.dev.ReadReg(reg, back[:]); err != nil {
		return err
	}
	if back[0]&rangeMask != val {
		return fmt.Errorf("%w: reg %#02x got %#02x want %#02x", ErrConfigMismatch, reg, back[0], val)
	}
	return nil
}

// SetAccelRange selects the accelerometer full scale.
func (d *Dev) SetAccelRange(r AccelRange) error {
	r &= rangeMask
	if err := d.writeVerified(regAccelConfig, byte(r)); err != nil {
		return err
	}
	d.accelScale = r.sensitivity()
	return nil
}

// SetGyroRange selects the gyroscope full scale.
func (d *Dev) SetGyroRange(r GyroRange) error {
	r &= rangeMask
	if err := d.writeVerified(regGyroConfig, byte(r)); err != nil {
		return err
	}
	d.gyroScale = r.sensitivity()
	return nil
}

// Read performs one burst read of accel, temperature and gyro.
func (d *Dev) Read() (s Sample, err error) {
	var buf [dataSize]byte
	if err = d.dev.ReadReg(regData, buf[:]); err != nil {
		return
	}
	var raw [7]float64
	for i := range raw {
		raw[i] = float64(int16(binary.BigEndian.Uint16(buf[2*i:])))
	}
	s.Accel = Vector{X: raw[0] / d.accelScale, Y: raw[1] / d.accelScale, Z: raw[2] / d.accelScale}
	celsius := raw[3]/tempSensitivity + tempOffset
	s.Temperature = physic.ZeroCelsius + physic.Temperature(celsius*float64(physic.Kelvin))
	gyro := Vector{X: raw[4] / d.gyroScale, Y: raw[5] / d.gyroScale, Z: raw[6] / d.gyroScale}
	s.Gyro = gyro.sub(d.gyroOffset)
	return
}

// Calibrate averages n gyro readings at rest into the gyro offset.
func (d *Dev) Calibrate(n int) error {
	d.gyroOffset = Vector{}
	var sum Vector
	for i := 0; i < n; i++ {
		s, err := d.Read()
		if err != nil {
			return fmt.Errorf("mpu6050: calibrate: %w", err)
		}
		sum.X, sum.Y, sum.Z = sum.X+s.Gyro.X, sum.Y+s.Gyro.Y, sum.Z+s.Gyro.Z
	}
	d.gyroOffset = Vector{X: sum.X / float64(n), Y: sum.Y / float64(n), Z: sum.Z / float64(n)}
	return nil
}

// GyroOffset returns the calibrated gyro offset.
func (d *Dev) GyroOffset() Vector {
	return d.gyroOffset
}

// WhoAmI returns the identity byte the device answered with.
func (d *Dev) WhoAmI() byte {
	return d.whoAmI
}

// Address returns the address the device was found at.
func (d *Dev) Address() uint16 {
	return d.dev.Addr
}

// String implements fmt.Stringer.
func (d *Dev) String() string {
	return fmt.Sprintf("MPU6050{%s id=%#02x}", d.dev.String(), d.whoAmI)
}
