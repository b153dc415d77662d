package tmp1075

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/bus/bustest"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		msb, lsb byte
		milliC   int64
	}{
		{0x00, 0x00, 0},
		{0x19, 0x00, 25000},
		{0x19, 0x10, 25062},
		{0x7f, 0xf0, 127937},
		{0xff, 0xf0, -62},
		{0xe7, 0x00, -25000},
	}
	for _, tc := range testCases {
		got := Decode(tc.msb, tc.lsb)
		milli := int64(got-physic.ZeroCelsius) / int64(physic.MilliKelvin)
		require.Equal(t, tc.milliC, milli, "%02x %02x", tc.msb, tc.lsb)
	}
}

func TestNewConfiguresResolution(t *testing.T) {
	regs := bustest.NewRegisters().
		Set(regConfig, 0x9f).
		Set(regDieID, 0x75, 0x00).
		Set(regTemp, 0x16, 0x80)
	fake := bustest.New().Attach(Address, regs)

	d, err := New(fake, Config{CheckID: true})
	require.NoError(t, err)
	require.Equal(t, []byte{0xff}, regs.Get(regConfig))
	require.Equal(t, 12, d.Resolution())

	var env physic.Env
	require.NoError(t, d.Sense(&env))
	require.Equal(t, physic.ZeroCelsius+22500*physic.MilliKelvin, env.Temperature)

	_, err = New(fake, Config{Resolution: 9})
	require.NoError(t, err)
	require.Equal(t, []byte{0x9f}, regs.Get(regConfig))
}

func TestNewFailures(t *testing.T) {
	_, err := New(bustest.New(), Config{})
	require.ErrorIs(t, err, bustest.ErrNoDevice)

	regs := bustest.NewRegisters().Set(regDieID, 0x12, 0x34)
	_, err = New(bustest.New().Attach(Address, regs), Config{CheckID: true})
	require.ErrorIs(t, err, ErrDieID)

	_, err = New(bustest.New(), Config{Resolution: 13})
	require.ErrorIs(t, err, ErrResolution)
}
