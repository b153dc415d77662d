package controller

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/drivers/ws2812"
	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/mbits"
	"github.com/robotalks/maqueen.go/pkg/sim/rover"
	"github.com/robotalks/maqueen.go/pkg/sim/see"
)

// ControllerType is the L1 controller type.
const ControllerType = "maqueen"

// roverRadius is the outline drawn for the simulated rover, in mm.
const roverRadius = 50

// Config defines the configurations for the controller.
type Config struct {
	// Bus is the I2C bus name, empty for the first bus.
	Bus      string
	Address  uint
	Protocol string
	Interval time.Duration
	Debug    bool
	// MaxReadFailures stops the bridge after this many failed read cycles.
	MaxReadFailures int
	// Sim drives a simulated rover instead of the bus.
	Sim bool
	// See streams the simulated pose to stdout, Sim only.
	See bool
	// RGBPort is the SPI port driving the RGB strip of protocols that have
	// one, empty leaves it off. The simulated rover always has the strip.
	RGBPort string
	// Board enables the carrier board; BoardConfig is its YAML pin map.
	Board       bool
	BoardConfig string
	BoardEvery  time.Duration
}

var defaultConfig = Config{
	Address:    uint(maqueen.DefaultAddress),
	Protocol:   maqueen.V1.Name,
	Interval:   maqueen.DefaultInterval,
	BoardEvery: time.Second,
}

func init() {
	if val, ok := os.LookupEnv("MAQUEEN_BUS"); ok {
		defaultConfig.Bus = val
	}
	if val := os.Getenv("MAQUEEN_PROTOCOL"); val != "" {
		defaultConfig.Protocol = val
	}
	if val := os.Getenv("MAQUEEN_BOARD_CONFIG"); val != "" {
		defaultConfig.Board, defaultConfig.BoardConfig = true, val
	}
	if val := os.Getenv("MAQUEEN_RGB_PORT"); val != "" {
		defaultConfig.RGBPort = val
	}
	if val := os.Getenv("MAQUEEN_SIM"); val != "" {
		defaultConfig.Sim, _ = strconv.ParseBool(val)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Bus, "bus", defaultConfig.Bus, "I2C bus name, empty for the first bus.")
	flag.UintVar(&defaultConfig.Address, "addr", defaultConfig.Address, "Rover controller I2C address.")
	flag.StringVar(&defaultConfig.Protocol, "protocol", defaultConfig.Protocol, "Rover firmware protocol: V1 or V2.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Poll interval.")
	flag.BoolVar(&defaultConfig.Debug, "debug", defaultConfig.Debug, "Log every bus failure.")
	flag.IntVar(&defaultConfig.MaxReadFailures, "max-read-failures", defaultConfig.MaxReadFailures, "Stop after this many failed reads in a row, 0 never stops.")
	flag.BoolVar(&defaultConfig.Sim, "sim", defaultConfig.Sim, "Drive a simulated rover.")
	flag.BoolVar(&defaultConfig.See, "see", defaultConfig.See, "Stream the simulated rover pose for the see viewer.")
	flag.StringVar(&defaultConfig.RGBPort, "rgb-port", defaultConfig.RGBPort, "SPI port of the RGB strip (v2), empty to leave it off.")
	flag.BoolVar(&defaultConfig.Board, "board", defaultConfig.Board, "Enable the Mbits carrier board.")
	flag.StringVar(&defaultConfig.BoardConfig, "board-config", defaultConfig.BoardConfig, "Carrier board YAML pin map.")
	flag.DurationVar(&defaultConfig.BoardEvery, "board-every", defaultConfig.BoardEvery, "Carrier board sample period.")
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

// Meta describes the controller for registration.
func (c *Config) Meta() l1.ControllerMeta {
	meta := l1.ControllerMeta{
		Description: "Maqueen Plus rover",
		Labels:      map[string]string{"protocol": c.Protocol},
	}
	if c.Sim {
		meta.Description += " (simulated)"
		meta.Labels["sim"] = "true"
	}
	return meta
}

// BridgeConfig converts to the bridge configuration.
func (c *Config) BridgeConfig() (maqueen.Config, error) {
	proto, err := maqueen.ProtocolByName(c.Protocol)
	if err != nil {
		return maqueen.Config{}, err
	}
	if c.Address == 0 || c.Address > 0x7f {
		return maqueen.Config{}, fmt.Errorf("invalid I2C address %#x", c.Address)
	}
	return maqueen.Config{
		Address:         uint16(c.Address),
		Protocol:        proto,
		Interval:        c.Interval,
		Debug:           c.Debug,
		MaxReadFailures: c.MaxReadFailures,
	}, nil
}

// NewController opens the bus, the bridge and the board.
func (c *Config) NewController(reg l1.Registrar) (*Controller, error) {
	bconf, err := c.BridgeConfig()
	if err != nil {
		return nil, err
	}
	var shared *bus.Shared
	var closer io.Closer
	var dev *rover.Device
	if c.Sim {
		dev = rover.New(nil)
		shared = bus.NewShared(dev.Bus(bconf.Address))
		glog.Info("driving simulated rover")
	} else if c.See {
		return nil, errors.New("see needs the simulated rover")
	} else if shared, closer, err = bus.Open(c.Bus); err != nil {
		return nil, err
	}
	ctl, err := c.newController(reg, shared, bconf)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	ctl.closers = append(ctl.closers, closer)
	if n := bconf.Protocol.RGBPixels; n > 0 && dev != nil {
		ctl.RGB = ws2812.New(dev.RGB(), n)
	} else if n > 0 && c.RGBPort != "" {
		strip, rgbCloser, err := ws2812.Open(c.RGBPort, n)
		if err != nil {
			ctl.Close()
			return nil, err
		}
		ctl.RGB = strip
		ctl.closers = append(ctl.closers, rgbCloser)
	} else if c.RGBPort != "" {
		ctl.Close()
		return nil, fmt.Errorf("%w: rgb on %s", maqueen.ErrUnsupported, bconf.Protocol.Name)
	}
	if c.See {
		ctl.Visual = see.NewConfig().NewAdapter().Track(&see.Body{
			Name:   ctl.Name(),
			Type:   ControllerType,
			Radius: roverRadius,
			Source: dev,
		})
	}
	return ctl, nil
}

func (c *Config) newController(reg l1.Registrar, shared *bus.Shared, bconf maqueen.Config) (*Controller, error) {
	bridge, err := maqueen.New(shared, bconf)
	if err != nil {
		return nil, err
	}
	ctl := New(bridge, reg)
	ctl.BoardEvery = c.BoardEvery
	if !c.Board {
		return ctl, nil
	}
	if c.Sim {
		return nil, errors.New("carrier board needs hardware")
	}
	boardConf, err := mbits.LoadConfig(c.BoardConfig)
	if err != nil {
		return nil, err
	}
	if ctl.Board, err = mbits.Open(boardConf, shared); err != nil {
		return nil, err
	}
	ctl.closers = append(ctl.closers, ctl.Board)
	return ctl, nil
}
