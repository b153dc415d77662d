// Package msgs defines the messages of the teleop controller.
package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

// TeleopStatusQuery queries the status.
type TeleopStatusQuery struct {
}

// NewMessage implements Message.
func (m *TeleopStatusQuery) NewMessage() fx.Message { return &TeleopStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *TeleopStatusQuery) TypeID() uint32 { return TeleopStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *TeleopStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TeleopStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TeleopStatusQuery) Reset() { *m = TeleopStatusQuery{} }

// String implements proto.Message.
func (m *TeleopStatusQuery) String() string { return proto.CompactTextString(m) }

// TeleopStatusReply is the response for TeleopStatusQuery.
type TeleopStatusReply struct {
	Status *TeleopStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *TeleopStatusReply) NewMessage() fx.Message { return &TeleopStatusReply{} }

// TypeID implements SerializableMessage.
func (m *TeleopStatusReply) TypeID() uint32 { return TeleopStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *TeleopStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TeleopStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TeleopStatusReply) Reset() { *m = TeleopStatusReply{} }

// String implements proto.Message.
func (m *TeleopStatusReply) String() string { return proto.CompactTextString(m) }

// TeleopConnect connects to a rover controller. Empty Type and ID disconnect.
type TeleopConnect struct {
	RegistryURL string `protobuf:"bytes,1,opt,name=registry_url,json=registryUrl,proto3" json:"registry_url,omitempty"`
	Type        string `protobuf:"bytes,2,opt,name=type,proto3" json:"type,omitempty"`
	ID          string `protobuf:"bytes,3,opt,name=id,proto3" json:"id,omitempty"`
}

// NewMessage implements Message.
func (m *TeleopConnect) NewMessage() fx.Message { return &TeleopConnect{} }

// TypeID implements SerializableMessage.
func (m *TeleopConnect) TypeID() uint32 { return TeleopConnectTypeID }

// Serializable implements SerializableMessage.
func (m *TeleopConnect) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TeleopConnect) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TeleopConnect) Reset() { *m = TeleopConnect{} }

// String implements proto.Message.
func (m *TeleopConnect) String() string { return proto.CompactTextString(m) }

// TeleopStatus is the event reporting the joystick, the connection and the
// last motor powers sent.
type TeleopStatus struct {
	Device     *TeleopDevice  `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Connection *TeleopConnect `protobuf:"bytes,2,opt,name=connection,proto3" json:"connection,omitempty"`
	Left       int32          `protobuf:"zigzag32,3,opt,name=left,proto3" json:"left,omitempty"`
	Right      int32          `protobuf:"zigzag32,4,opt,name=right,proto3" json:"right,omitempty"`
}

// NewMessage implements Message.
func (m *TeleopStatus) NewMessage() fx.Message { return &TeleopStatus{} }

// TypeID implements SerializableMessage.
func (m *TeleopStatus) TypeID() uint32 { return TeleopStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *TeleopStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TeleopStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TeleopStatus) Reset() { *m = TeleopStatus{} }

// String implements proto.Message.
func (m *TeleopStatus) String() string { return proto.CompactTextString(m) }

// TeleopDevice describes the opened joystick.
type TeleopDevice struct {
	Index   uint32 `protobuf:"varint,1,opt,name=index,proto3" json:"index,omitempty"`
	Name    string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Axes    uint32 `protobuf:"varint,3,opt,name=axes,proto3" json:"axes,omitempty"`
	Buttons uint32 `protobuf:"varint,4,opt,name=buttons,proto3" json:"buttons,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *TeleopDevice) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TeleopDevice) Reset() { *m = TeleopDevice{} }

// String implements proto.Message.
func (m *TeleopDevice) String() string { return proto.CompactTextString(m) }

// GroupTeleop is the message group of the teleop controller.
const GroupTeleop = msgs.GroupCustom | 0x00200000

// TypeIDs
const (
	TeleopStatusQueryTypeID uint32 = GroupTeleop | 0x0000
	TeleopStatusReplyTypeID uint32 = GroupTeleop | msgs.TypeIDMaskReply | 0x0000
	TeleopStatusEventTypeID uint32 = GroupTeleop | msgs.TypeIDKindEvent | 0x0000
	TeleopConnectTypeID     uint32 = GroupTeleop | 0x0001
)

func init() {
	msgs.MessageTypes[TeleopStatusQueryTypeID] = (*TeleopStatusQuery)(nil)
	msgs.MessageTypes[TeleopStatusReplyTypeID] = (*TeleopStatusReply)(nil)
	msgs.MessageTypes[TeleopStatusEventTypeID] = (*TeleopStatus)(nil)
	msgs.MessageTypes[TeleopConnectTypeID] = (*TeleopConnect)(nil)
}
