// Package device reads Linux joystick devices (/dev/input/jsN).
package device

import (
	"errors"
	"io"
)

// ErrUnsupported is returned by Open on platforms without the joystick API.
var ErrUnsupported = errors.New("joystick: unsupported platform")

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// Event is a single change reported by the device.
type Event interface {
	// IsInit is true for the synthetic events describing the initial state.
	IsInit() bool
	// Index returns either Axis or Button index.
	Index() int
}

// AxisEvent is a change on an axis, Value in [-AxisMax, AxisMax].
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent is a press or release.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks until the next event. It fails once the device is
	// unplugged or closed.
	ReadEvent() (Event, error)
}

// Axis is a plain AxisEvent value.
type Axis struct {
	Number int
	Pos    int
	Init   bool
}

// IsInit implements Event.
func (a Axis) IsInit() bool { return a.Init }

// Index implements Event.
func (a Axis) Index() int { return a.Number }

// Value implements AxisEvent.
func (a Axis) Value() int { return a.Pos }

// Button is a plain ButtonEvent value.
type Button struct {
	Number int
	Down   bool
	Init   bool
}

// IsInit implements Event.
func (b Button) IsInit() bool { return b.Init }

// Index implements Event.
func (b Button) Index() int { return b.Number }

// Pressed implements ButtonEvent.
func (b Button) Pressed() bool { return b.Down }

// wire layout of struct js_event.
const (
	eventSize = 8

	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02
	evINIT uint8 = 0x80
)

// Decode parses one js_event record. Records that are neither axis nor
// button return nil.
func Decode(b []byte) Event {
	if len(b) < eventSize {
		return nil
	}
	value := int(int16(uint16(b[4]) | uint16(b[5])<<8))
	typ, number := b[6], int(b[7])
	init := typ&evINIT != 0
	switch typ &^ evINIT {
	case evAXIS:
		return Axis{Number: number, Pos: value, Init: init}
	case evBTN:
		return Button{Number: number, Down: value != 0, Init: init}
	}
	return nil
}
