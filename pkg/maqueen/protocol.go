package maqueen

import (
	"fmt"
	"strings"
)

// Peripheral address and register map.
const (
	DefaultAddress uint16 = 0x10

	RegMotor        byte = 0x00
	RegEncoderReset byte = 0x04
	RegCompensation byte = 0x08
	RegPID          byte = 0x0A
	RegLights       byte = 0x0B
	RegGround       byte = 0x1D

	MotorBlockSize  = 22
	GroundBlockSize = 14

	DirForward byte = 1
	DirReverse byte = 2

	// MaxMotorPower is the magnitude limit for motors and compensation.
	MaxMotorPower = 255
	// MaxGroundChannels is the number of channels in the ground block.
	MaxGroundChannels = 6
)

// Protocol describes a firmware revision of the rover controller. All
// revisions share the bridge core and differ only in these constants.
type Protocol struct {
	Name           string
	GroundChannels int
	MaxLights      int
	// Extended enables encoder reset, PID and compensation.
	Extended bool
	// RGBPixels is the length of the RGB strip under the rover, driven
	// from the host rather than over the bus.
	RGBPixels int
}

// Known protocol revisions.
var (
	V1 = Protocol{Name: "v1", GroundChannels: 6, MaxLights: 7, Extended: true}
	V2 = Protocol{Name: "v2", GroundChannels: 5, MaxLights: 1, RGBPixels: 4}
)

// Protocols lists the known revisions.
var Protocols = []Protocol{V1, V2}

// ProtocolByName finds a protocol revision by name.
func ProtocolByName(name string) (Protocol, error) {
	for _, p := range Protocols {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Protocol{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
}

// String implements fmt.Stringer.
func (p Protocol) String() string {
	return p.Name
}

func (p Protocol) valid() bool {
	return p.GroundChannels > 0 && p.GroundChannels <= MaxGroundChannels && p.MaxLights > 0
}
