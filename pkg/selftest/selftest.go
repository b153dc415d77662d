// Package selftest walks a rover and its carrier board through every
// actuator and sensor, one step at a time, and reports what worked.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/mbits"
)

// Defaults
const (
	DefaultStep    = 500 * time.Millisecond
	DefaultSettle  = time.Second
	DefaultPower   = 100
	DefaultSamples = 5
)

var (
	// ErrSkipped marks a step whose part is absent.
	ErrSkipped = errors.New("skipped")
	// ErrNoReading is reported when the poll loop delivers nothing in time.
	ErrNoReading = errors.New("no fresh reading")
)

// Suite runs the steps. Bridge must be polling; Board is optional.
type Suite struct {
	Bridge *maqueen.Bridge
	Board  *mbits.Board
	Out    io.Writer
	Clock  clock.Clock
	// Step is how long each action is held.
	Step time.Duration
	// Settle bounds the wait for a fresh reading.
	Settle  time.Duration
	Power   int
	Samples int
}

// Result is the outcome of one step.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the step ran without error.
func (r Result) Passed() bool { return r.Err == nil }

// Skipped reports whether the step did not apply.
func (r Result) Skipped() bool { return errors.Is(r.Err, ErrSkipped) }

type step struct {
	name string
	fn   func(ctx context.Context) error
}

func (s *Suite) defaults() {
	if s.Out == nil {
		s.Out = io.Discard
	}
	if s.Clock == nil {
		s.Clock = clock.New()
	}
	if s.Step <= 0 {
		s.Step = DefaultStep
	}
	if s.Settle <= 0 {
		s.Settle = DefaultSettle
	}
	if s.Power == 0 {
		s.Power = DefaultPower
	}
	if s.Samples <= 0 {
		s.Samples = DefaultSamples
	}
}

// Run executes every step in order and halts the rover afterwards. It
// stops early when ctx is done.
func (s *Suite) Run(ctx context.Context) []Result {
	s.defaults()
	defer s.Bridge.Halt()
	steps := []step{
		{"lights", s.lights},
		{"ground", s.ground},
		{"motors", s.motors},
		{"encoders", s.encoders},
		{"speaker", s.speaker},
		{"microphone", s.microphone},
		{"buttons", s.buttons},
		{"motion", s.motion},
		{"temperature", s.temperature},
		{"display", s.display},
	}
	results := make([]Result, 0, len(steps))
	for _, st := range steps {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.Out, "== %s\n", st.name)
		err := st.fn(ctx)
		switch {
		case err == nil:
			fmt.Fprintf(s.Out, "   PASS\n")
		case errors.Is(err, ErrSkipped):
			fmt.Fprintf(s.Out, "   SKIP %v\n", err)
		default:
			fmt.Fprintf(s.Out, "   FAIL %v\n", err)
			glog.Warningf("selftest %s: %v", st.name, err)
		}
		results = append(results, Result{Name: st.name, Err: err})
	}
	return results
}

// Summary counts passed, skipped and failed steps.
func Summary(results []Result) (passed, skipped, failed int) {
	for _, r := range results {
		switch {
		case r.Passed():
			passed++
		case r.Skipped():
			skipped++
		default:
			failed++
		}
	}
	return
}

func (s *Suite) hold(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.Clock.After(s.Step):
		return nil
	}
}

// until polls cond every poll interval until it holds or Settle passes.
func (s *Suite) until(ctx context.Context, cond func() bool) error {
	deadline := s.Clock.Now().Add(s.Settle)
	for !cond() {
		if !s.Clock.Now().Before(deadline) {
			return ErrNoReading
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Clock.After(maqueen.DefaultInterval / 4):
		}
	}
	return nil
}

func (s *Suite) check(ok bool) error {
	if ok {
		return nil
	}
	if msg := s.Bridge.LastErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	return errors.New("rejected")
}

func (s *Suite) lights(ctx context.Context) error {
	top := s.Bridge.Protocol().MaxLights
	for level := 0; level <= top; level++ {
		fmt.Fprintf(s.Out, "   lights %d %d\n", level, top-level)
		if err := s.check(s.Bridge.SetLights(level, top-level)); err != nil {
			return err
		}
		if err := s.hold(ctx); err != nil {
			return err
		}
	}
	return s.check(s.Bridge.SetLights(0, 0))
}

func (s *Suite) ground(ctx context.Context) error {
	for n := 0; n < s.Samples; n++ {
		var line []bool
		var analog []uint16
		err := s.until(ctx, func() bool {
			var fresh bool
			line, fresh = s.Bridge.GroundLine()
			if fresh {
				analog, _ = s.Bridge.GroundAnalog()
			}
			return fresh
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "   line %v analog %v\n", line, analog)
	}
	return nil
}

func (s *Suite) motors(ctx context.Context) error {
	p := s.Power
	moves := []struct {
		name        string
		left, right int
	}{
		{"forward", p, p},
		{"backward", -p, -p},
		{"turn left", -p, p},
		{"turn right", p, -p},
		{"stop", 0, 0},
	}
	for _, mv := range moves {
		fmt.Fprintf(s.Out, "   %s\n", mv.name)
		if err := s.check(s.Bridge.Drive(mv.left, mv.right)); err != nil {
			return err
		}
		want := maqueen.MotorPower{Left: mv.left, Right: mv.right}
		var got maqueen.MotorPower
		err := s.until(ctx, func() bool {
			m, fresh := s.Bridge.Motors()
			got = m
			return fresh && m == want
		})
		if errors.Is(err, ErrNoReading) {
			return fmt.Errorf("%s: reported %+v, want %+v", mv.name, got, want)
		} else if err != nil {
			return err
		}
		if err := s.hold(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Suite) encoders(ctx context.Context) error {
	if !s.Bridge.Protocol().Extended {
		return fmt.Errorf("%w: %s has no encoders", ErrSkipped, s.Bridge.Protocol())
	}
	if err := s.check(s.Bridge.ResetEncoders()); err != nil {
		return err
	}
	if err := s.check(s.Bridge.Drive(s.Power, s.Power)); err != nil {
		return err
	}
	err := s.hold(ctx)
	s.Bridge.StopMotors()
	if err != nil {
		return err
	}
	var enc maqueen.Encoders
	err = s.until(ctx, func() bool {
		e, fresh := s.Bridge.Encoders()
		enc = e
		return fresh && e.Left > 0 && e.Right > 0
	})
	fmt.Fprintf(s.Out, "   encoders %d %d\n", enc.Left, enc.Right)
	if errors.Is(err, ErrNoReading) {
		return errors.New("encoders did not advance")
	}
	return err
}

func (s *Suite) board() error {
	if s.Board == nil {
		return fmt.Errorf("%w: no carrier board", ErrSkipped)
	}
	return nil
}

func skipAbsent(err error) error {
	if errors.Is(err, mbits.ErrNotPresent) {
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	return err
}

func (s *Suite) speaker(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	defer s.Board.Mute()
	for f := 262; f <= 523; f *= 2 {
		fmt.Fprintf(s.Out, "   tone %d Hz\n", f)
		if err := s.Board.Tone(physic.Frequency(f) * physic.Hertz); err != nil {
			return skipAbsent(err)
		}
		if err := s.hold(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Suite) microphone(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	var lo, hi int32
	for n := 0; n < s.Samples; n++ {
		v, err := s.Board.Microphone()
		if err != nil {
			return skipAbsent(err)
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		if err := s.hold(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(s.Out, "   level %d..%d\n", lo, hi)
	return nil
}

func (s *Suite) buttons(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	a, err := s.Board.ButtonA()
	if err != nil {
		return skipAbsent(err)
	}
	b, err := s.Board.ButtonB()
	if err != nil {
		return skipAbsent(err)
	}
	fmt.Fprintf(s.Out, "   A=%v B=%v\n", a, b)
	return nil
}

func (s *Suite) motion(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	accel, err := s.Board.Accel()
	if err != nil {
		return skipAbsent(err)
	}
	gyro, err := s.Board.Gyro()
	if err != nil {
		return skipAbsent(err)
	}
	fmt.Fprintf(s.Out, "   accel %.2f %.2f %.2f g\n", accel.X, accel.Y, accel.Z)
	fmt.Fprintf(s.Out, "   gyro %.1f %.1f %.1f deg/s\n", gyro.X, gyro.Y, gyro.Z)
	if accel.Norm() == 0 {
		return errors.New("accelerometer reads zero")
	}
	return nil
}

func (s *Suite) temperature(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	t, err := s.Board.Temperature()
	if err != nil {
		return skipAbsent(err)
	}
	fmt.Fprintf(s.Out, "   %s\n", t)
	return nil
}

func (s *Suite) display(ctx context.Context) error {
	if err := s.board(); err != nil {
		return err
	}
	strip, err := s.Board.Display()
	if err != nil {
		return skipAbsent(err)
	}
	defer func() {
		strip.Fill(colorful.Color{})
		strip.Write()
	}()
	for hue := 0.0; hue < 360; hue += 60 {
		c := colorful.Hsv(hue, 1, 0.2)
		fmt.Fprintf(s.Out, "   fill %s\n", c.Hex())
		strip.Fill(c)
		if err := strip.Write(); err != nil {
			return err
		}
		if err := s.hold(ctx); err != nil {
			return err
		}
	}
	return nil
}
