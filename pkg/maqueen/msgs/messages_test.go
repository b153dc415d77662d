package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	l1msgs "github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

func TestStatusOverTyped(t *testing.T) {
	st := &Status{
		Protocol:     "v1",
		Fresh:        0x3f,
		MotorLeft:    -120,
		MotorRight:   255,
		GroundLine:   []bool{true, false, false, true, false, true},
		GroundAnalog: []uint32{10, 2000, 30, 40, 50, 60},
		Error:        "maqueen: invalid arguments",
	}
	typed, err := l1msgs.TypedFrom(&StatusReply{Status: st})
	require.NoError(t, err)
	require.True(t, typed.IsReply())
	data, err := typed.Encode()
	require.NoError(t, err)

	typed, err = l1msgs.DecodeTyped(data)
	require.NoError(t, err)
	msg, err := typed.Decode()
	require.NoError(t, err)
	require.Equal(t, st, msg.(*StatusReply).Status)

	typed, err = l1msgs.TypedFrom(st)
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
}

func TestTypeIDs(t *testing.T) {
	seen := map[uint32]bool{}
	for _, id := range []uint32{
		MotorsSetTypeID, LightsSetTypeID, HaltTypeID, EncodersResetTypeID,
		PIDSetTypeID, CompensationsSetTypeID, StatusQueryTypeID, StatusReplyTypeID,
		StatusEventTypeID, BoardQueryTypeID, BoardReplyTypeID, BoardStatusEventTypeID,
		ToneSetTypeID, DisplayFillTypeID, RGBFillTypeID,
	} {
		require.False(t, seen[id], "%x", id)
		seen[id] = true
		require.Contains(t, l1msgs.MessageTypes, id)
		require.Equal(t, GroupMaqueen, id&l1msgs.TypeIDMaskGroup)
	}
}
