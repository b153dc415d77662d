package see

import "strings"

// Viewer actions.
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Pos is a position in mm.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one drawn object. The viewer picks the style by Type.
type Shape struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Origin *Pos    `json:"origin,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	// Rotate is the heading in degrees.
	Rotate float64 `json:"rotate"`
	// Loc anchors corner markers: lt, lb, rt or rb.
	Loc string `json:"loc,omitempty"`
}

// Message is one instruction to the viewer.
type Message struct {
	Action   string `json:"action"`
	Object   *Shape `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// ObjectID converts a controller name to a viewer ID.
func ObjectID(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// corners marks the visualized area so the viewer can scale it.
func corners(w, h float64) []Message {
	x, y := w/2, h/2
	msgs := make([]Message, 0, 4)
	for _, c := range []struct {
		loc  string
		x, y float64
	}{{"lt", -x, -y}, {"lb", -x, y}, {"rt", x, -y}, {"rb", x, y}} {
		msgs = append(msgs, Message{Action: ActionObject, Object: &Shape{
			ID:     "corner-" + c.loc,
			Type:   "corner",
			Origin: &Pos{X: c.x, Y: c.y},
			Radius: 1,
			Loc:    c.loc,
		}})
	}
	return msgs
}
