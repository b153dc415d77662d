// Package bus provides the I2C transaction layer shared by the rover bridge
// and the carrier board drivers.
package bus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
)

// Bus performs a single write-then-read transaction against one peripheral.
// Either w or r may be empty. periph.io's i2c.Bus satisfies this interface.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Func is the func form of Bus.
type Func func(addr uint16, w, r []byte) error

// Tx implements Bus.
func (f Func) Tx(addr uint16, w, r []byte) error {
	return f(addr, w, r)
}

// ErrShortBuffer indicates a register read was requested with no destination.
var ErrShortBuffer = errors.New("bus: empty read buffer")

// Dev is a peripheral at a fixed address on a Bus.
type Dev struct {
	Bus  Bus
	Addr uint16
}

// Tx runs a transaction against the device.
func (d *Dev) Tx(w, r []byte) error {
	return d.Bus.Tx(d.Addr, w, r)
}

// Write writes bytes to the device.
func (d *Dev) Write(w []byte) error {
	return d.Bus.Tx(d.Addr, w, nil)
}

// Read reads len(r) bytes from the device.
func (d *Dev) Read(r []byte) error {
	return d.Bus.Tx(d.Addr, nil, r)
}

// ReadReg selects reg and reads len(r) bytes in one transaction.
func (d *Dev) ReadReg(reg byte, r []byte) error {
	if len(r) == 0 {
		return ErrShortBuffer
	}
	return d.Bus.Tx(d.Addr, []byte{reg}, r)
}

// WriteReg writes data starting at reg.
func (d *Dev) WriteReg(reg byte, data ...byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	return d.Bus.Tx(d.Addr, append(w, data...), nil)
}

// String implements fmt.Stringer.
func (d *Dev) String() string {
	return fmt.Sprintf("i2c@%#02x", d.Addr)
}

// Shared serializes every transaction on the wrapped Bus. All bridges and
// drivers attached to one physical bus must use the same Shared.
type Shared struct {
	bus  Bus
	lock sync.Mutex
}

// NewShared wraps b.
func NewShared(b Bus) *Shared {
	if s, ok := b.(*Shared); ok {
		return s
	}
	return &Shared{bus: b}
}

// Tx implements Bus.
func (s *Shared) Tx(addr uint16, w, r []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	err := s.bus.Tx(addr, w, r)
	if glog.V(3) {
		glog.Infof("TX %#02x W=% x R=% x err=%v", addr, w, r, err)
	}
	return err
}

// Dev returns an addressed device on the shared bus.
func (s *Shared) Dev(addr uint16) *Dev {
	return &Dev{Bus: s, Addr: addr}
}
