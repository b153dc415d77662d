package teleop

import (
	"math"

	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/teleop/device"
)

// Mixer turns two stick axes into differential motor power. Pushing the
// throttle axis forward (negative values) drives forward; the steering axis
// turns towards the side it is pushed.
type Mixer struct {
	ThrottleAxis int
	SteeringAxis int
	// Deadzone is the raw axis magnitude read as centred.
	Deadzone int
	// MaxPower is the power of a fully deflected stick.
	MaxPower int

	throttle int
	steering int
}

// DefaultMixer uses the left stick of common gamepads.
func DefaultMixer() Mixer {
	return Mixer{
		ThrottleAxis: 1,
		SteeringAxis: 0,
		Deadzone:     2000,
		MaxPower:     maqueen.MaxMotorPower,
	}
}

// Axis records a new axis position and reports whether the axis is mixed.
func (m *Mixer) Axis(index, value int) bool {
	switch index {
	case m.ThrottleAxis:
		m.throttle = -value
	case m.SteeringAxis:
		m.steering = value
	default:
		return false
	}
	return true
}

// Reset centres both axes.
func (m *Mixer) Reset() {
	m.throttle, m.steering = 0, 0
}

// Power returns the motor powers for the recorded positions.
func (m *Mixer) Power() (left, right int) {
	t := float64(m.filter(m.throttle)) / device.AxisMax
	s := float64(m.filter(m.steering)) / device.AxisMax
	l, r := t+s, t-s
	if mag := math.Max(math.Abs(l), math.Abs(r)); mag > 1 {
		l, r = l/mag, r/mag
	}
	scale := float64(m.MaxPower)
	return maqueen.ClampPower(int(math.Round(l * scale))), maqueen.ClampPower(int(math.Round(r * scale)))
}

func (m *Mixer) filter(v int) int {
	switch {
	case v > -m.Deadzone && v < m.Deadzone:
		return 0
	case v > device.AxisMax:
		return device.AxisMax
	case v < -device.AxisMax:
		return -device.AxisMax
	}
	return v
}
