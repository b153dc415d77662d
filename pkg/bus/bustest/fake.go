// Package bustest provides an in-memory bus for tests.
package bustest

import (
	"errors"
	"sync"
)

// ErrNoDevice is returned for transactions addressed to nothing.
var ErrNoDevice = errors.New("bustest: no device at address")

// Device answers transactions routed to its address.
type Device interface {
	Tx(w, r []byte) error
}

// DeviceFunc is the func form of Device.
type DeviceFunc func(w, r []byte) error

// Tx implements Device.
func (f DeviceFunc) Tx(w, r []byte) error {
	return f(w, r)
}

// Transaction is one recorded bus transaction.
type Transaction struct {
	Addr uint16
	W    []byte
	R    []byte
	Err  error
}

// IsWrite reports a write-only transaction.
func (t Transaction) IsWrite() bool {
	return len(t.W) > 0 && len(t.R) == 0
}

// Fake implements bus.Bus by routing transactions to attached devices.
type Fake struct {
	devices map[uint16]Device
	log     []Transaction
	fail    func(Transaction) error
	lock    sync.Mutex
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{devices: make(map[uint16]Device)}
}

// Attach places dev at addr.
func (f *Fake) Attach(addr uint16, dev Device) *Fake {
	f.lock.Lock()
	f.devices[addr] = dev
	f.lock.Unlock()
	return f
}

// FailWhen installs a fault injector consulted before each transaction.
// A non-nil result fails the transaction without reaching the device.
func (f *Fake) FailWhen(fn func(Transaction) error) {
	f.lock.Lock()
	f.fail = fn
	f.lock.Unlock()
}

// FailAll fails every transaction with err.
func (f *Fake) FailAll(err error) {
	f.FailWhen(func(Transaction) error { return err })
}

// Heal removes any fault injector.
func (f *Fake) Heal() {
	f.FailWhen(nil)
}

// Tx implements bus.Bus.
func (f *Fake) Tx(addr uint16, w, r []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	t := Transaction{Addr: addr, W: append([]byte(nil), w...)}
	if f.fail != nil {
		t.Err = f.fail(t)
	}
	if t.Err == nil {
		if dev := f.devices[addr]; dev != nil {
			t.Err = dev.Tx(w, r)
		} else {
			t.Err = ErrNoDevice
		}
	}
	if t.Err == nil && len(r) > 0 {
		t.R = append([]byte(nil), r...)
	}
	f.log = append(f.log, t)
	return t.Err
}

// Transactions returns a copy of the transaction log.
func (f *Fake) Transactions() []Transaction {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Transaction(nil), f.log...)
}

// Writes returns the payloads of successful write-only transactions to addr.
func (f *Fake) Writes(addr uint16) [][]byte {
	var writes [][]byte
	for _, t := range f.Transactions() {
		if t.Addr == addr && t.Err == nil && t.IsWrite() {
			writes = append(writes, t.W)
		}
	}
	return writes
}

// ClearLog drops recorded transactions.
func (f *Fake) ClearLog() {
	f.lock.Lock()
	f.log = nil
	f.lock.Unlock()
}

// Registers is a byte-addressed register file device. A single-byte write
// selects the register pointer; longer writes store data at w[0].
type Registers struct {
	Regs map[byte][]byte

	ptr  byte
	lock sync.Mutex
}

// NewRegisters creates an empty register file.
func NewRegisters() *Registers {
	return &Registers{Regs: make(map[byte][]byte)}
}

// Set stores data at reg.
func (d *Registers) Set(reg byte, data ...byte) *Registers {
	d.lock.Lock()
	d.Regs[reg] = append([]byte(nil), data...)
	d.lock.Unlock()
	return d
}

// Get returns the data stored at reg.
func (d *Registers) Get(reg byte) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]byte(nil), d.Regs[reg]...)
}

// Tx implements Device.
func (d *Registers) Tx(w, r []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(w) > 0 {
		d.ptr = w[0]
		if len(w) > 1 {
			d.Regs[d.ptr] = append([]byte(nil), w[1:]...)
		}
	}
	if len(r) > 0 {
		n := copy(r, d.Regs[d.ptr])
		for i := n; i < len(r); i++ {
			r[i] = 0
		}
	}
	return nil
}
