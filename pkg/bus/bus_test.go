package bus_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/bus/bustest"
)

func TestDevRegisters(t *testing.T) {
	fake := bustest.New()
	regs := bustest.NewRegisters().Set(0x0f, 0x75, 0x00)
	fake.Attach(0x48, regs)
	dev := bus.NewShared(fake).Dev(0x48)

	var id [2]byte
	require.NoError(t, dev.ReadReg(0x0f, id[:]))
	require.Equal(t, []byte{0x75, 0x00}, id[:])

	require.NoError(t, dev.WriteReg(0x01, 0x60))
	require.Equal(t, []byte{0x60}, regs.Get(0x01))

	require.Equal(t, bus.ErrShortBuffer, dev.ReadReg(0x01, nil))
	require.Equal(t, "i2c@0x48", dev.String())
}

func TestFakeFaults(t *testing.T) {
	fake := bustest.New().Attach(0x10, bustest.NewRegisters())
	require.Equal(t, bustest.ErrNoDevice, fake.Tx(0x11, []byte{0}, nil))

	boom := errors.New("boom")
	fake.FailWhen(func(t bustest.Transaction) error {
		if len(t.W) > 0 && t.W[0] == 0x0b {
			return boom
		}
		return nil
	})
	require.NoError(t, fake.Tx(0x10, []byte{0x00, 1, 2}, nil))
	require.Equal(t, boom, fake.Tx(0x10, []byte{0x0b, 1, 1}, nil))
	fake.Heal()
	require.NoError(t, fake.Tx(0x10, []byte{0x0b, 1, 1}, nil))

	require.Equal(t, [][]byte{{0x00, 1, 2}, {0x0b, 1, 1}}, fake.Writes(0x10))
	fake.ClearLog()
	require.Empty(t, fake.Transactions())
}

type overlapBus struct {
	active  int
	overlap bool
	lock    sync.Mutex
}

func (b *overlapBus) Tx(addr uint16, w, r []byte) error {
	b.lock.Lock()
	b.active++
	if b.active > 1 {
		b.overlap = true
	}
	b.lock.Unlock()
	for i := 0; i < 1000; i++ {
		_ = i * i
	}
	b.lock.Lock()
	b.active--
	b.lock.Unlock()
	return nil
}

func TestSharedSerializes(t *testing.T) {
	raw := &overlapBus{}
	shared := bus.NewShared(raw)
	require.Same(t, shared, bus.NewShared(shared))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(addr uint16) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				shared.Tx(addr, []byte{byte(n)}, nil)
			}
		}(uint16(i))
	}
	wg.Wait()
	require.False(t, raw.overlap)
}
