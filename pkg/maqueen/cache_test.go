package maqueen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheFreshness(t *testing.T) {
	var c StateCache
	s, fresh := c.Take(FreshMotors)
	require.False(t, fresh)
	require.Equal(t, Snapshot{}, s)

	snap := Snapshot{Motors: MotorPower{Left: 3, Right: -4}}
	snap.GroundLine[1] = true
	c.Replace(snap)

	s, fresh = c.Take(FreshMotors)
	require.True(t, fresh)
	require.Equal(t, snap.Motors, s.Motors)
	s, fresh = c.Take(FreshMotors)
	require.False(t, fresh)
	require.Equal(t, snap.Motors, s.Motors)

	_, f := c.Peek()
	require.Equal(t, FreshAll&^FreshMotors, f)
	s, fresh = c.Take(FreshGroundLine | FreshGroundAnalog)
	require.True(t, fresh)
	require.True(t, s.GroundLine[1])
	_, f = c.Peek()
	require.False(t, f.Has(FreshGroundLine))
	require.True(t, f.Has(FreshPID|FreshEncoders))
}
