package teleop

import (
	"flag"
	"time"

	"github.com/robotalks/maqueen.go/pkg/l1"
	env "github.com/robotalks/maqueen.go/pkg/l1/env/controller"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
)

// ControllerType is the type the teleop controller registers with.
const ControllerType = "maqueen-teleop"

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex  int
	Verbose      bool
	ThrottleAxis int
	SteeringAxis int
	Deadzone     int
	MaxPower     int
	HaltButton   int
	LightsButton int
	// AutoStop is passed with every non-zero MotorsSet so the rover stops
	// when the joystick side goes away. Zero disables it.
	AutoStop time.Duration
}

var defaultConfig = Config{
	DeviceIndex:  -1,
	ThrottleAxis: 1,
	SteeringAxis: 0,
	Deadzone:     2000,
	MaxPower:     maqueen.MaxMotorPower,
	HaltButton:   0,
	LightsButton: 1,
	AutoStop:     500 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
	flag.IntVar(&defaultConfig.ThrottleAxis, "throttle-axis", defaultConfig.ThrottleAxis, "Axis driving forward and backward.")
	flag.IntVar(&defaultConfig.SteeringAxis, "steering-axis", defaultConfig.SteeringAxis, "Axis steering left and right.")
	flag.IntVar(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Raw axis values read as centred.")
	flag.IntVar(&defaultConfig.MaxPower, "max-power", defaultConfig.MaxPower, "Motor power at full deflection.")
	flag.IntVar(&defaultConfig.HaltButton, "halt-button", defaultConfig.HaltButton, "Button halting the rover.")
	flag.IntVar(&defaultConfig.LightsButton, "lights-button", defaultConfig.LightsButton, "Button toggling the lights.")
	flag.DurationVar(&defaultConfig.AutoStop, "auto-stop", defaultConfig.AutoStop, "Rover side stop timeout, 0 to disable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Mixer builds the axis mixer.
func (c *Config) Mixer() Mixer {
	return Mixer{
		ThrottleAxis: c.ThrottleAxis,
		SteeringAxis: c.SteeringAxis,
		Deadzone:     c.Deadzone,
		MaxPower:     maqueen.ClampPower(c.MaxPower),
	}
}

// Meta describes the controller for registration.
func (c *Config) Meta() l1.ControllerMeta {
	return l1.ControllerMeta{Description: "Joystick teleoperation for Maqueen rovers"}
}

// NewController creates a controller using the config.
func (c *Config) NewController(e *env.Env) *Controller {
	var registryURL string
	if len(e.RegistryURLs) > 0 {
		registryURL = e.RegistryURLs[0]
	}
	ctl := NewController(e.Registrar, registryURL)
	ctl.apply(c)
	return ctl
}

func (c *Controller) apply(conf *Config) {
	c.DeviceIndex = conf.DeviceIndex
	c.Verbose = conf.Verbose
	c.Mixer = conf.Mixer()
	c.HaltButton = conf.HaltButton
	c.LightsButton = conf.LightsButton
	c.AutoStop = conf.AutoStop
}
