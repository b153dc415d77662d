package comm

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/comm/stream"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

const (
	pingTypeID    = msgs.GroupCustom | 0x7ff00
	pongTypeID    = pingTypeID | msgs.TypeIDMaskReply
	otherTypeID   = pingTypeID | 0x01
	tickTypeID    = pingTypeID | msgs.TypeIDKindEvent
	unknownTypeID = pingTypeID | 0x02
)

type ping struct {
	Value int32 `protobuf:"varint,1,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *ping) NewMessage() fx.Message      { return &ping{} }
func (m *ping) TypeID() uint32              { return pingTypeID }
func (m *ping) Serializable() proto.Message { return m }
func (m *ping) ProtoMessage()               {}
func (m *ping) Reset()                      { *m = ping{} }
func (m *ping) String() string              { return proto.CompactTextString(m) }

type pong struct {
	Value int32 `protobuf:"varint,1,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *pong) NewMessage() fx.Message      { return &pong{} }
func (m *pong) TypeID() uint32              { return pongTypeID }
func (m *pong) Serializable() proto.Message { return m }
func (m *pong) ProtoMessage()               {}
func (m *pong) Reset()                      { *m = pong{} }
func (m *pong) String() string              { return proto.CompactTextString(m) }

type other struct{ ping }

func (m *other) NewMessage() fx.Message { return &other{} }
func (m *other) TypeID() uint32         { return otherTypeID }

type tick struct{ ping }

func (m *tick) NewMessage() fx.Message { return &tick{} }
func (m *tick) TypeID() uint32         { return tickTypeID }

type unknown struct{ ping }

func (m *unknown) TypeID() uint32 { return unknownTypeID }

func init() {
	msgs.MessageTypes[pingTypeID] = (*ping)(nil)
	msgs.MessageTypes[pongTypeID] = (*pong)(nil)
	msgs.MessageTypes[otherTypeID] = (*other)(nil)
	msgs.MessageTypes[tickTypeID] = (*tick)(nil)
}

func TestRegistrarAndConn(t *testing.T) {
	a, b := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistrar(stream.New(a))
	server := fx.NewLoop().Add(reg)
	server.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			if cmd, ok := mc.CurrentMessage().(*l1.CommandMsg); ok {
				if p, ok := cmd.Command.Msg().(*ping); ok {
					mc.MessageTaken()
					cmd.Command.Done(&pong{Value: p.Value + 1})
				}
			}
		}))
		return nil
	}))
	server.Add(&UnsupportedCommands{})

	var conn ControllerConn
	conn.Init(stream.New(b))
	events := make(chan fx.Message, 1)
	client := fx.NewLoop().Add(&conn)
	client.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			mc.MessageTaken()
			events <- mc.CurrentMessage()
		}))
		return nil
	}))

	serverDone := make(chan error, 1)
	clientDone := make(chan error, 1)
	go func() { serverDone <- server.Run(ctx) }()
	go func() { clientDone <- client.Run(ctx) }()

	res := <-conn.DoCommand(&ping{Value: 41}).ResultChan()
	require.NoError(t, res.Err)
	require.Equal(t, int32(42), res.Msg.(*pong).Value)

	res = <-conn.DoCommand(&other{}).ResultChan()
	require.Error(t, res.Err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())

	res = <-conn.DoCommand(&unknown{}).ResultChan()
	var cmdErr *msgs.CommandErr
	require.True(t, errors.As(res.Err, &cmdErr))
	require.Contains(t, cmdErr.Message, "unknown type")

	require.NoError(t, reg.SendEvent(ctx, &tick{ping{Value: 7}}))
	select {
	case ev := <-events:
		require.Equal(t, int32(7), ev.(*tick).Value)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	require.Zero(t, conn.Pending())

	require.ErrorIs(t, reg.SendEvent(ctx, &ping{}), ErrWrongKind)

	cancel()
	require.ErrorIs(t, <-serverDone, context.Canceled)
	require.ErrorIs(t, <-clientDone, context.Canceled)
}

type discard struct{}

func (discard) ReadPacket() ([]byte, error) { select {} }
func (discard) WritePacket([]byte) error    { return nil }

func TestCommandExpiration(t *testing.T) {
	var conn ControllerConn
	conn.Init(discard{})
	mock := clock.NewMock()
	conn.Clock = mock

	f := conn.DoCommand(&ping{})
	require.NoError(t, conn.purgeExpired(nil))
	require.Equal(t, 1, conn.Pending())

	mock.Add(DefaultCommandExpiration)
	require.NoError(t, conn.purgeExpired(nil))
	res := <-f.ResultChan()
	require.ErrorIs(t, res.Err, context.DeadlineExceeded)
	require.Zero(t, conn.Pending())

	res = <-conn.DoCommand(&tick{}).ResultChan()
	require.ErrorIs(t, res.Err, ErrWrongKind)
}
