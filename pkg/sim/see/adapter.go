// Package see streams simulated rover poses as JSON lines for the
// github.com/robotalks/see viewer.
package see

import (
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/sim"
)

// Config is the visualized area, in millimeters.
type Config struct {
	W float64
	H float64
}

var defaultConfig = Config{
	W: 1000,
	H: 1000,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.W, "see-w", defaultConfig.W, "Width (mm) of visualization area")
	flag.Float64Var(&defaultConfig.H, "see-h", defaultConfig.H, "Height (mm) of visualization area")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config.
func (c *Config) NewAdapter() *Adapter {
	return &Adapter{Config: *c, Out: os.Stdout, initial: true}
}

// Posed is anything with a pose to draw.
type Posed interface {
	Pose() sim.Pose2D
}

// Body is a tracked object with its outline radius (mm).
type Body struct {
	Name   string
	Type   string
	Radius float64
	Source Posed

	last    sim.Pose2D
	drawn   bool
	removed bool
}

// Adapter writes a line of Messages whenever a tracked body moves.
type Adapter struct {
	Config Config
	Out    io.Writer

	bodies  []*Body
	initial bool
}

// Track adds a body.
func (a *Adapter) Track(b *Body) *Adapter {
	a.bodies = append(a.bodies, b)
	return a
}

// Untrack removes the named body from the view.
func (a *Adapter) Untrack(name string) {
	for _, b := range a.bodies {
		if b.Name == name {
			b.removed = true
		}
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges is a controller to report changes.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	msgs := a.changes()
	if len(msgs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if _, err := a.Out.Write(append(encoded, '\n')); err != nil {
		glog.Warningf("see: %v", err)
	}
	return nil
}

func (a *Adapter) changes() []Message {
	var msgs []Message
	if a.initial {
		msgs = append([]Message{{Action: ActionReset}}, corners(a.Config.W, a.Config.H)...)
		a.initial = false
	}
	kept := a.bodies[:0]
	for _, b := range a.bodies {
		if b.removed {
			msgs = append(msgs, Message{Action: ActionRemove, RemoveID: ObjectID(b.Name)})
			continue
		}
		kept = append(kept, b)
		pose := b.Source.Pose()
		if b.drawn && pose == b.last {
			continue
		}
		b.last, b.drawn = pose, true
		msgs = append(msgs, Message{Action: ActionObject, Object: &Shape{
			ID:     ObjectID(b.Name),
			Type:   b.Type,
			Origin: &Pos{X: pose.X, Y: pose.Y},
			Radius: b.Radius,
			Rotate: pose.Orientation.Degrees(),
		}})
	}
	a.bodies = kept
	return msgs
}
