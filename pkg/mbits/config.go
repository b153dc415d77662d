package mbits

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/maqueen.go/pkg/drivers/mpu6050"
	"github.com/robotalks/maqueen.go/pkg/drivers/tmp1075"
)

// DisplayConfig configures the LED matrix. Zero Pixels disables it.
type DisplayConfig struct {
	// Port is the SPI port name whose MOSI drives the matrix, empty for the
	// first port.
	Port   string `yaml:"port"`
	Pixels int    `yaml:"pixels"`
}

// IMUConfig configures the motion sensor.
type IMUConfig struct {
	Enabled bool `yaml:"enabled"`
	// Address of zero probes both candidate addresses.
	Address            uint16 `yaml:"address"`
	CalibrationSamples int    `yaml:"calibration_samples"`
}

// ThermoConfig configures the temperature sensor.
type ThermoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Address    uint16 `yaml:"address"`
	Resolution int    `yaml:"resolution"`
}

// Config maps board parts to host resources. An empty pin name disables
// the part.
type Config struct {
	// Bus names the I2C bus shared with the rover controller.
	Bus       string `yaml:"bus"`
	ButtonA   string `yaml:"button_a"`
	ButtonB   string `yaml:"button_b"`
	ActiveLow bool   `yaml:"active_low"`
	// Microphone is an IIO channel relative to IIODir.
	Microphone string        `yaml:"microphone"`
	Speaker    string        `yaml:"speaker"`
	Display    DisplayConfig `yaml:"display"`
	IMU        IMUConfig     `yaml:"imu"`
	Thermo     ThermoConfig  `yaml:"thermo"`
}

// DefaultConfig returns the stock board wiring.
func DefaultConfig() Config {
	return Config{
		Bus:        "1",
		ButtonA:    "GPIO36",
		ButtonB:    "GPIO39",
		ActiveLow:  true,
		Microphone: "iio:device0/in_voltage7_raw",
		Speaker:    "GPIO33",
		Display:    DisplayConfig{Pixels: 25},
		IMU:        IMUConfig{Enabled: true},
		Thermo:     ThermoConfig{Enabled: true, Address: tmp1075.Address, Resolution: 12},
	}
}

// ParseConfig decodes YAML over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	conf := DefaultConfig()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("mbits: parse config: %w", err)
	}
	return conf, nil
}

// LoadConfig reads a YAML file. An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

func (c Config) imu() mpu6050.Config {
	return mpu6050.Config{
		Address:            c.IMU.Address,
		Accel:              mpu6050.Accel2G,
		Gyro:               mpu6050.Gyro250DPS,
		CalibrationSamples: c.IMU.CalibrationSamples,
	}
}

func (c Config) thermo() tmp1075.Config {
	return tmp1075.Config{
		Address:    c.Thermo.Address,
		Resolution: c.Thermo.Resolution,
	}
}
