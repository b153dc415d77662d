package see

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/sim"
)

type pose struct{ p sim.Pose2D }

func (p *pose) Pose() sim.Pose2D { return p.p }

func lines(t *testing.T, out *bytes.Buffer) [][]Message {
	var res [][]Message
	dec := json.NewDecoder(out)
	for dec.More() {
		var msgs []Message
		require.NoError(t, dec.Decode(&msgs))
		res = append(res, msgs)
	}
	return res
}

func TestAdapter(t *testing.T) {
	var out bytes.Buffer
	src := &pose{}
	a := (&Config{W: 200, H: 100}).NewAdapter()
	a.Out = &out
	a.Track(&Body{Name: "maqueen/r1", Type: "rover", Radius: 50, Source: src})
	loop := &fx.Loop{}
	loop.Add(a)

	loop.RunIteration(context.Background())
	loop.RunIteration(context.Background())
	src.p = sim.Pose2D{Pos2D: sim.Pos2D{X: 10}, Orientation: sim.AngleFromDegrees(90)}
	loop.RunIteration(context.Background())
	a.Untrack("maqueen/r1")
	loop.RunIteration(context.Background())

	res := lines(t, &out)
	require.Len(t, res, 3)
	require.Len(t, res[0], 6)
	require.Equal(t, ActionReset, res[0][0].Action)
	require.Equal(t, "corner-rb", res[0][4].Object.ID)
	require.Equal(t, &Pos{X: 100, Y: 50}, res[0][4].Object.Origin)
	require.Equal(t, "maqueen.r1", res[0][5].Object.ID)
	require.Equal(t, "rover", res[0][5].Object.Type)

	moved := res[1][0].Object
	require.Equal(t, &Pos{X: 10}, moved.Origin)
	require.InDelta(t, 90, moved.Rotate, 1e-9)

	require.Equal(t, []Message{{Action: ActionRemove, RemoveID: "maqueen.r1"}}, res[2])
}
