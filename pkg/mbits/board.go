// Package mbits drives the Mbits carrier board mounted on the rover: two
// buttons, a microphone, a speaker, a 5x5 LED matrix, a motion sensor and
// a temperature sensor.
package mbits

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/drivers/mpu6050"
	"github.com/robotalks/maqueen.go/pkg/drivers/tmp1075"
	"github.com/robotalks/maqueen.go/pkg/drivers/ws2812"
	fx "github.com/robotalks/maqueen.go/pkg/framework"
)

// IIODir is where Microphone channels are resolved.
var IIODir = "/sys/bus/iio/devices"

// ErrNotPresent indicates the part is disabled or missing.
var ErrNotPresent = errors.New("mbits: part not present")

// Button is a configured input pin.
type Button interface {
	Read() gpio.Level
}

// Sampler reads an analog channel.
type Sampler interface {
	Read() (analog.Sample, error)
}

// Speaker is a PWM capable output pin.
type Speaker interface {
	Out(l gpio.Level) error
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// Board holds the parts. Nil parts are absent.
type Board struct {
	A, B      Button
	ActiveLow bool
	Mic       Sampler
	Speaker   Speaker
	Matrix    *ws2812.Strip
	IMU       *mpu6050.Dev
	Thermo    *tmp1075.Dev

	closers []io.Closer
}

// Reading is one sample of every present part.
type Reading struct {
	ButtonA     bool
	ButtonB     bool
	Microphone  int32
	Accel       mpu6050.Vector
	Gyro        mpu6050.Vector
	Temperature physic.Temperature
}

// Open wires the parts named in conf. Sensors share b with the rover
// controller.
func Open(conf Config, b *bus.Shared) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	board := &Board{ActiveLow: conf.ActiveLow}
	var err error
	if board.A, err = openButton(conf.ButtonA, conf.ActiveLow); err != nil {
		return nil, err
	}
	if board.B, err = openButton(conf.ButtonB, conf.ActiveLow); err != nil {
		return nil, err
	}
	if conf.Speaker != "" {
		p := gpioreg.ByName(conf.Speaker)
		if p == nil {
			return nil, fmt.Errorf("mbits: speaker pin %q not found", conf.Speaker)
		}
		board.Speaker = p
	}
	if conf.Microphone != "" {
		board.Mic = &iioChannel{path: filepath.Join(IIODir, conf.Microphone)}
	}
	if conf.Display.Pixels > 0 {
		strip, closer, err := ws2812.Open(conf.Display.Port, conf.Display.Pixels)
		if err != nil {
			board.Close()
			return nil, err
		}
		board.Matrix = strip
		board.closers = append(board.closers, closer)
	}
	if err := board.openSensors(conf, b); err != nil {
		board.Close()
		return nil, err
	}
	return board, nil
}

func (b *Board) openSensors(conf Config, shared *bus.Shared) error {
	if !conf.IMU.Enabled && !conf.Thermo.Enabled {
		return nil
	}
	if shared == nil {
		return errors.New("mbits: sensors need a bus")
	}
	var err error
	if conf.IMU.Enabled {
		if b.IMU, err = mpu6050.New(shared, conf.imu()); err != nil {
			return err
		}
		glog.Infof("mbits: %s", b.IMU)
	}
	if conf.Thermo.Enabled {
		if b.Thermo, err = tmp1075.New(shared, conf.thermo()); err != nil {
			return err
		}
		glog.Infof("mbits: %s", b.Thermo)
	}
	return nil
}

func openButton(name string, activeLow bool) (Button, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("mbits: button pin %q not found", name)
	}
	pull := gpio.PullDown
	if activeLow {
		pull = gpio.PullUp
	}
	if err := p.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("mbits: button %s: %w", name, err)
	}
	return p, nil
}

// Close releases the host resources.
func (b *Board) Close() error {
	var errs fx.AggregatedError
	if b.Speaker != nil {
		errs.Add(b.Mute())
	}
	for _, c := range b.closers {
		errs.Add(c.Close())
	}
	b.closers = nil
	return errs.Aggregate()
}

func (b *Board) pressed(btn Button) (bool, error) {
	if btn == nil {
		return false, ErrNotPresent
	}
	return (btn.Read() == gpio.High) != b.ActiveLow, nil
}

// ButtonA reports whether button A is pressed.
func (b *Board) ButtonA() (bool, error) {
	return b.pressed(b.A)
}

// ButtonB reports whether button B is pressed.
func (b *Board) ButtonB() (bool, error) {
	return b.pressed(b.B)
}

// Microphone returns the raw 12-bit microphone level.
func (b *Board) Microphone() (int32, error) {
	if b.Mic == nil {
		return 0, ErrNotPresent
	}
	s, err := b.Mic.Read()
	return s.Raw, err
}

// Tone plays a square wave at freq. Zero or negative mutes.
func (b *Board) Tone(freq physic.Frequency) error {
	if b.Speaker == nil {
		return ErrNotPresent
	}
	if freq <= 0 {
		return b.Mute()
	}
	return b.Speaker.PWM(gpio.DutyHalf, freq)
}

// Mute stops the speaker.
func (b *Board) Mute() error {
	if b.Speaker == nil {
		return ErrNotPresent
	}
	return b.Speaker.Out(gpio.Low)
}

func (b *Board) motion() (mpu6050.Sample, error) {
	if b.IMU == nil {
		return mpu6050.Sample{}, ErrNotPresent
	}
	return b.IMU.Read()
}

// Accel returns acceleration in g.
func (b *Board) Accel() (mpu6050.Vector, error) {
	s, err := b.motion()
	return s.Accel, err
}

// Gyro returns angular rate in degrees per second.
func (b *Board) Gyro() (mpu6050.Vector, error) {
	s, err := b.motion()
	return s.Gyro, err
}

// Temperature prefers the dedicated sensor and falls back to the motion
// sensor die temperature.
func (b *Board) Temperature() (physic.Temperature, error) {
	if b.Thermo != nil {
		return b.Thermo.Temperature()
	}
	s, err := b.motion()
	return s.Temperature, err
}

// Display returns the LED matrix.
func (b *Board) Display() (*ws2812.Strip, error) {
	if b.Matrix == nil {
		return nil, ErrNotPresent
	}
	return b.Matrix, nil
}

// Sample reads every present part. Absent parts are left zero; the first
// read failure is returned.
func (b *Board) Sample() (r Reading, err error) {
	keep := func(e error) {
		if e != nil && !errors.Is(e, ErrNotPresent) && err == nil {
			err = e
		}
	}
	var e error
	r.ButtonA, e = b.ButtonA()
	keep(e)
	r.ButtonB, e = b.ButtonB()
	keep(e)
	r.Microphone, e = b.Microphone()
	keep(e)
	if b.IMU != nil {
		s, e := b.IMU.Read()
		keep(e)
		r.Accel, r.Gyro, r.Temperature = s.Accel, s.Gyro, s.Temperature
	}
	if b.Thermo != nil {
		t, e := b.Thermo.Temperature()
		keep(e)
		if e == nil {
			r.Temperature = t
		}
	}
	return r, err
}

// iioChannel reads a Linux IIO voltage channel.
type iioChannel struct {
	path string
}

func (c *iioChannel) Read() (analog.Sample, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return analog.Sample{}, err
	}
	raw, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return analog.Sample{}, fmt.Errorf("mbits: %s: %w", c.path, err)
	}
	return analog.Sample{Raw: int32(raw)}, nil
}
