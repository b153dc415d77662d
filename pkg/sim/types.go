// Package sim provides kinematics shared by the simulated peripherals.
package sim

import "time"

// Pos2D defines the position in 2D, in millimeters.
type Pos2D struct {
	X, Y float64
}

// Pose2D defines the pose in 2D.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Angle is the common representation of angle,
// supporting multiple units.
type Angle float64

// Add is a helper to add Pos2D.
func (p Pos2D) Add(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X + p1.X, Y: p.Y + p1.Y}
}

// OffsetBy performs Add in-place.
func (p *Pos2D) OffsetBy(p1 Pos2D) *Pos2D {
	p.X += p1.X
	p.Y += p1.Y
	return p
}

// DiffDrive integrates a two-wheeled differential drive.
type DiffDrive struct {
	// WheelBase is the distance between wheels (mm).
	WheelBase float64
	// SpeedMax is the wheel speed (mm/s) at full power.
	SpeedMax float64
	// PowerMax is the full power command value.
	PowerMax float64
}

// WheelSpeed converts a power command into wheel speed (mm/s).
func (d DiffDrive) WheelSpeed(power int) float64 {
	if d.PowerMax == 0 {
		return 0
	}
	return float64(power) * d.SpeedMax / d.PowerMax
}

// Advance moves pose for dt with the given wheel powers. The pose follows
// the arc through the middle of the step.
func (d DiffDrive) Advance(pose Pose2D, left, right int, dt time.Duration) Pose2D {
	secs := dt.Seconds()
	if secs <= 0 {
		return pose
	}
	vl, vr := d.WheelSpeed(left), d.WheelSpeed(right)
	dist := (vl + vr) / 2 * secs
	var turn float64
	if d.WheelBase > 0 {
		turn = (vr - vl) / d.WheelBase * secs
	}
	mid := pose.Orientation.AddRadians(turn / 2)
	pose.Pos2D.OffsetBy(mid.Project(dist))
	pose.Orientation = pose.Orientation.AddRadians(turn)
	return pose
}
