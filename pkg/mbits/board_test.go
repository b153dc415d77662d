package mbits

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/bus"
	"github.com/robotalks/maqueen.go/pkg/bus/bustest"
	"github.com/robotalks/maqueen.go/pkg/drivers/ws2812"
	fx "github.com/robotalks/maqueen.go/pkg/framework"
)

func testPin(t *testing.T, name string, num int) *gpiotest.Pin {
	if p := gpioreg.ByName(name); p != nil {
		return p.(*gpiotest.Pin)
	}
	p := &gpiotest.Pin{N: name, Num: num}
	require.NoError(t, gpioreg.Register(p))
	return p
}

func sensorBus() *bus.Shared {
	fake := bustest.New().
		Attach(0x48, bustest.NewRegisters().
			Set(0x01, 0x00).
			Set(0x00, 0x19, 0x00)).
		Attach(0x68, bustest.NewRegisters().
			Set(0x75, 0x68).
			Set(0x3b, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00))
	return bus.NewShared(fake)
}

func TestParseConfig(t *testing.T) {
	conf, err := ParseConfig([]byte(`
button_b: ""
speaker: PWM0
display:
  pixels: 0
imu:
  enabled: false
`))
	require.NoError(t, err)
	require.Equal(t, "GPIO36", conf.ButtonA)
	require.Empty(t, conf.ButtonB)
	require.Equal(t, "PWM0", conf.Speaker)
	require.Zero(t, conf.Display.Pixels)
	require.False(t, conf.IMU.Enabled)
	require.True(t, conf.Thermo.Enabled)
	require.Equal(t, uint16(0x48), conf.Thermo.Address)

	_, err = ParseConfig([]byte("imu: [1"))
	require.Error(t, err)

	conf, err = LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), conf)
}

func TestOpen(t *testing.T) {
	a := testPin(t, "MBITS_TEST_A", 1036)
	b := testPin(t, "MBITS_TEST_B", 1039)
	spk := testPin(t, "MBITS_TEST_SPK", 1033)

	dir := t.TempDir()
	IIODir = dir
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "iio:device0"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iio:device0", "in_voltage7_raw"), []byte("2047\n"), 0644))

	conf := DefaultConfig()
	conf.ButtonA, conf.ButtonB, conf.Speaker = a.N, b.N, spk.N
	conf.Display.Pixels = 0
	conf.IMU.CalibrationSamples = -1
	board, err := Open(conf, sensorBus())
	require.NoError(t, err)
	defer board.Close()

	require.Equal(t, gpio.PullUp, a.P)
	a.L, b.L = gpio.Low, gpio.High
	pressed, err := board.ButtonA()
	require.NoError(t, err)
	require.True(t, pressed)
	pressed, err = board.ButtonB()
	require.NoError(t, err)
	require.False(t, pressed)

	mic, err := board.Microphone()
	require.NoError(t, err)
	require.Equal(t, int32(2047), mic)

	require.NoError(t, board.Tone(440*physic.Hertz))
	require.Equal(t, gpio.DutyHalf, spk.D)
	require.Equal(t, 440*physic.Hertz, spk.F)
	require.NoError(t, board.Tone(0))
	require.Equal(t, gpio.Low, spk.L)

	accel, err := board.Accel()
	require.NoError(t, err)
	require.InDelta(t, 1, accel.Z, 1e-9)
	temp, err := board.Temperature()
	require.NoError(t, err)
	require.Equal(t, physic.ZeroCelsius+25*physic.Kelvin, temp)

	_, err = board.Display()
	require.ErrorIs(t, err, ErrNotPresent)

	r, err := board.Sample()
	require.NoError(t, err)
	require.True(t, r.ButtonA)
	require.Equal(t, int32(2047), r.Microphone)
	require.Equal(t, temp, r.Temperature)
}

func TestOpenMissingPin(t *testing.T) {
	conf := Config{ButtonA: "MBITS_NO_SUCH_PIN"}
	_, err := Open(conf, nil)
	require.Error(t, err)

	_, err = Open(Config{IMU: IMUConfig{Enabled: true}}, nil)
	require.Error(t, err)
}

type nullConn struct{ n int }

func (c *nullConn) String() string { return "null" }

func (c *nullConn) Duplex() conn.Duplex { return conn.Half }

func (c *nullConn) Tx(w, r []byte) error {
	c.n++
	return nil
}

func TestAbsentParts(t *testing.T) {
	board := &Board{}
	_, err := board.ButtonA()
	require.ErrorIs(t, err, ErrNotPresent)
	_, err = board.Microphone()
	require.ErrorIs(t, err, ErrNotPresent)
	require.ErrorIs(t, board.Tone(440*physic.Hertz), ErrNotPresent)
	_, err = board.Gyro()
	require.ErrorIs(t, err, ErrNotPresent)
	_, err = board.Temperature()
	require.ErrorIs(t, err, ErrNotPresent)
	r, err := board.Sample()
	require.NoError(t, err)
	require.Equal(t, Reading{}, r)

	c := &nullConn{}
	board.Matrix = ws2812.New(c, 25)
	m, err := board.Display()
	require.NoError(t, err)
	m.Fill(colorful.Color{G: 1})
	require.NoError(t, m.Write())
	require.Equal(t, 1, c.n)
	require.NoError(t, board.Close())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("closer a"), errors.New("closer b")
	closed := 0
	board := &Board{closers: []io.Closer{
		closerFunc(func() error { closed++; return errA }),
		closerFunc(func() error { closed++; return nil }),
		closerFunc(func() error { closed++; return errB }),
	}}
	err := board.Close()
	require.Equal(t, 3, closed)
	var agg *fx.AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, []error{errA, errB}, agg.Errors)
	require.ErrorIs(t, err, errB)

	require.NoError(t, board.Close())
	require.Equal(t, 3, closed)
}
