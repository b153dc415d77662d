// Package tmp1075 drives the TI TMP1075 (TMP75 compatible) temperature
// sensor found on the Mbits carrier board.
package tmp1075

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/bus"
)

// Address is the default I2C address.
const Address uint16 = 0x48

// DieID is the content of the die ID register.
const DieID uint16 = 0x7500

const (
	regTemp   = 0x00
	regConfig = 0x01
	regDieID  = 0x0F

	configResolutionMask  = 0x60
	configResolutionShift = 5

	// 0.0625 °C per LSB of the 12-bit reading.
	lsb = 62500 * physic.MicroKelvin
)

// Errors returned by the driver.
var (
	ErrDieID      = errors.New("tmp1075: unexpected die id")
	ErrResolution = errors.New("tmp1075: resolution must be 9 to 12 bits")
)

// Config is optional; zero values select defaults.
type Config struct {
	// Address defaults to 0x48.
	Address uint16
	// Resolution in bits, 12 if zero.
	Resolution int
	// CheckID verifies the die ID on construction.
	CheckID bool
}

// Dev is a TMP1075 sensor.
type Dev struct {
	dev        bus.Dev
	resolution int
}

// New configures the sensor resolution. It fails if the sensor does not
// answer.
func New(b bus.Bus, conf Config) (*Dev, error) {
	if conf.Address == 0 {
		conf.Address = Address
	}
	if conf.Resolution == 0 {
		conf.Resolution = 12
	}
	if conf.Resolution < 9 || conf.Resolution > 12 {
		return nil, ErrResolution
	}
	d := &Dev{dev: bus.Dev{Bus: b, Addr: conf.Address}, resolution: conf.Resolution}
	if conf.CheckID {
		if err := d.CheckID(); err != nil {
			return nil, err
		}
	}
	var cfg [1]byte
	if err := d.dev.ReadReg(regConfig, cfg[:]); err != nil {
		return nil, fmt.Errorf("tmp1075: read config: %w", err)
	}
	val := cfg[0]&^configResolutionMask | byte(conf.Resolution-9)<<configResolutionShift
	if err := d.dev.WriteReg(regConfig, val); err != nil {
		return nil, fmt.Errorf("tmp1075: write config: %w", err)
	}
	return d, nil
}

// CheckID verifies the die ID register.
func (d *Dev) CheckID() error {
	var id [2]byte
	if err := d.dev.ReadReg(regDieID, id[:]); err != nil {
		return fmt.Errorf("tmp1075: read die id: %w", err)
	}
	if got := uint16(id[0])<<8 | uint16(id[1]); got != DieID {
		return fmt.Errorf("%w: %#04x", ErrDieID, got)
	}
	return nil
}

// Temperature reads the current temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	var raw [2]byte
	if err := d.dev.ReadReg(regTemp, raw[:]); err != nil {
		return 0, err
	}
	return Decode(raw[0], raw[1]), nil
}

// Sense implements the periph environmental sensor convention.
func (d *Dev) Sense(e *physic.Env) error {
	t, err := d.Temperature()
	if err != nil {
		return err
	}
	e.Temperature = t
	return nil
}

// Resolution returns the configured resolution in bits.
func (d *Dev) Resolution() int {
	return d.resolution
}

// String implements fmt.Stringer.
func (d *Dev) String() string {
	return "TMP1075{" + d.dev.String() + "}"
}

// Decode converts the two temperature register bytes.
func Decode(msb, lsbByte byte) physic.Temperature {
	raw := int64(msb)<<4 | int64(lsbByte>>4)
	if raw&0x800 != 0 {
		raw -= 0x1000
	}
	return physic.ZeroCelsius + physic.Temperature(raw)*lsb
}
