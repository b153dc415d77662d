package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

// MotorsSet sets motor power. A Keep flag leaves that side unchanged;
// AutoStopMs stops both motors after the delay.
type MotorsSet struct {
	Left       int32  `protobuf:"zigzag32,1,opt,name=left,proto3" json:"left,omitempty"`
	Right      int32  `protobuf:"zigzag32,2,opt,name=right,proto3" json:"right,omitempty"`
	KeepLeft   bool   `protobuf:"varint,3,opt,name=keep_left,json=keepLeft,proto3" json:"keep_left,omitempty"`
	KeepRight  bool   `protobuf:"varint,4,opt,name=keep_right,json=keepRight,proto3" json:"keep_right,omitempty"`
	AutoStopMs uint32 `protobuf:"varint,5,opt,name=auto_stop_ms,json=autoStopMs,proto3" json:"auto_stop_ms,omitempty"`
}

// NewMessage implements Message.
func (m *MotorsSet) NewMessage() fx.Message { return &MotorsSet{} }

// TypeID implements SerializableMessage.
func (m *MotorsSet) TypeID() uint32 { return MotorsSetTypeID }

// Serializable implements SerializableMessage.
func (m *MotorsSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MotorsSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MotorsSet) Reset() { *m = MotorsSet{} }

// String implements proto.Message.
func (m *MotorsSet) String() string { return proto.CompactTextString(m) }

// LightsSet sets headlight intensity.
type LightsSet struct {
	Left  int32 `protobuf:"zigzag32,1,opt,name=left,proto3" json:"left,omitempty"`
	Right int32 `protobuf:"zigzag32,2,opt,name=right,proto3" json:"right,omitempty"`
}

// NewMessage implements Message.
func (m *LightsSet) NewMessage() fx.Message { return &LightsSet{} }

// TypeID implements SerializableMessage.
func (m *LightsSet) TypeID() uint32 { return LightsSetTypeID }

// Serializable implements SerializableMessage.
func (m *LightsSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LightsSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LightsSet) Reset() { *m = LightsSet{} }

// String implements proto.Message.
func (m *LightsSet) String() string { return proto.CompactTextString(m) }

// Halt stops the motors and turns the headlights off.
type Halt struct {
}

// NewMessage implements Message.
func (m *Halt) NewMessage() fx.Message { return &Halt{} }

// TypeID implements SerializableMessage.
func (m *Halt) TypeID() uint32 { return HaltTypeID }

// Serializable implements SerializableMessage.
func (m *Halt) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Halt) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Halt) Reset() { *m = Halt{} }

// String implements proto.Message.
func (m *Halt) String() string { return proto.CompactTextString(m) }

// EncodersReset zeroes the encoder counters.
type EncodersReset struct {
}

// NewMessage implements Message.
func (m *EncodersReset) NewMessage() fx.Message { return &EncodersReset{} }

// TypeID implements SerializableMessage.
func (m *EncodersReset) TypeID() uint32 { return EncodersResetTypeID }

// Serializable implements SerializableMessage.
func (m *EncodersReset) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *EncodersReset) ProtoMessage() {}

// Reset implements proto.Message.
func (m *EncodersReset) Reset() { *m = EncodersReset{} }

// String implements proto.Message.
func (m *EncodersReset) String() string { return proto.CompactTextString(m) }

// PIDSet switches the speed regulator.
type PIDSet struct {
	Enable bool `protobuf:"varint,1,opt,name=enable,proto3" json:"enable,omitempty"`
}

// NewMessage implements Message.
func (m *PIDSet) NewMessage() fx.Message { return &PIDSet{} }

// TypeID implements SerializableMessage.
func (m *PIDSet) TypeID() uint32 { return PIDSetTypeID }

// Serializable implements SerializableMessage.
func (m *PIDSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PIDSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PIDSet) Reset() { *m = PIDSet{} }

// String implements proto.Message.
func (m *PIDSet) String() string { return proto.CompactTextString(m) }

// CompensationsSet sets motor compensation.
type CompensationsSet struct {
	Left      int32 `protobuf:"zigzag32,1,opt,name=left,proto3" json:"left,omitempty"`
	Right     int32 `protobuf:"zigzag32,2,opt,name=right,proto3" json:"right,omitempty"`
	KeepLeft  bool  `protobuf:"varint,3,opt,name=keep_left,json=keepLeft,proto3" json:"keep_left,omitempty"`
	KeepRight bool  `protobuf:"varint,4,opt,name=keep_right,json=keepRight,proto3" json:"keep_right,omitempty"`
}

// NewMessage implements Message.
func (m *CompensationsSet) NewMessage() fx.Message { return &CompensationsSet{} }

// TypeID implements SerializableMessage.
func (m *CompensationsSet) TypeID() uint32 { return CompensationsSetTypeID }

// Serializable implements SerializableMessage.
func (m *CompensationsSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CompensationsSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CompensationsSet) Reset() { *m = CompensationsSet{} }

// String implements proto.Message.
func (m *CompensationsSet) String() string { return proto.CompactTextString(m) }

// StatusQuery asks for a StatusReply.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() fx.Message { return &StatusQuery{} }

// TypeID implements SerializableMessage.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *StatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusQuery) Reset() { *m = StatusQuery{} }

// String implements proto.Message.
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }

// StatusReply is the response for StatusQuery.
type StatusReply struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *StatusReply) NewMessage() fx.Message { return &StatusReply{} }

// TypeID implements SerializableMessage.
func (m *StatusReply) TypeID() uint32 { return StatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *StatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReply) Reset() { *m = StatusReply{} }

// String implements proto.Message.
func (m *StatusReply) String() string { return proto.CompactTextString(m) }

// Status is the rover state. Sent as an event when any group was fresh.
// Fresh holds the maqueen.Freshness bits of this sample.
type Status struct {
	Protocol       string   `protobuf:"bytes,1,opt,name=protocol,proto3" json:"protocol,omitempty"`
	State          string   `protobuf:"bytes,2,opt,name=state,proto3" json:"state,omitempty"`
	Fresh          uint32   `protobuf:"varint,3,opt,name=fresh,proto3" json:"fresh,omitempty"`
	MotorLeft      int32    `protobuf:"zigzag32,4,opt,name=motor_left,json=motorLeft,proto3" json:"motor_left,omitempty"`
	MotorRight     int32    `protobuf:"zigzag32,5,opt,name=motor_right,json=motorRight,proto3" json:"motor_right,omitempty"`
	CommandedLeft  int32    `protobuf:"zigzag32,6,opt,name=commanded_left,json=commandedLeft,proto3" json:"commanded_left,omitempty"`
	CommandedRight int32    `protobuf:"zigzag32,7,opt,name=commanded_right,json=commandedRight,proto3" json:"commanded_right,omitempty"`
	LightsLeft     int32    `protobuf:"varint,8,opt,name=lights_left,json=lightsLeft,proto3" json:"lights_left,omitempty"`
	LightsRight    int32    `protobuf:"varint,9,opt,name=lights_right,json=lightsRight,proto3" json:"lights_right,omitempty"`
	EncoderLeft    uint32   `protobuf:"varint,10,opt,name=encoder_left,json=encoderLeft,proto3" json:"encoder_left,omitempty"`
	EncoderRight   uint32   `protobuf:"varint,11,opt,name=encoder_right,json=encoderRight,proto3" json:"encoder_right,omitempty"`
	CompLeft       int32    `protobuf:"varint,12,opt,name=comp_left,json=compLeft,proto3" json:"comp_left,omitempty"`
	CompRight      int32    `protobuf:"varint,13,opt,name=comp_right,json=compRight,proto3" json:"comp_right,omitempty"`
	Pid            bool     `protobuf:"varint,14,opt,name=pid,proto3" json:"pid,omitempty"`
	GroundLine     []bool   `protobuf:"varint,15,rep,packed,name=ground_line,json=groundLine,proto3" json:"ground_line,omitempty"`
	GroundAnalog   []uint32 `protobuf:"varint,16,rep,packed,name=ground_analog,json=groundAnalog,proto3" json:"ground_analog,omitempty"`
	Error          string   `protobuf:"bytes,17,opt,name=error,proto3" json:"error,omitempty"`
	Pending        uint32   `protobuf:"varint,18,opt,name=pending,proto3" json:"pending,omitempty"`
}

// NewMessage implements Message.
func (m *Status) NewMessage() fx.Message { return &Status{} }

// TypeID implements SerializableMessage.
func (m *Status) TypeID() uint32 { return StatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *Status) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// BoardQuery asks for a BoardReply.
type BoardQuery struct {
}

// NewMessage implements Message.
func (m *BoardQuery) NewMessage() fx.Message { return &BoardQuery{} }

// TypeID implements SerializableMessage.
func (m *BoardQuery) TypeID() uint32 { return BoardQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BoardQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BoardQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BoardQuery) Reset() { *m = BoardQuery{} }

// String implements proto.Message.
func (m *BoardQuery) String() string { return proto.CompactTextString(m) }

// BoardReply is the response for BoardQuery.
type BoardReply struct {
	Board *BoardStatus `protobuf:"bytes,1,opt,name=board,proto3" json:"board,omitempty"`
}

// NewMessage implements Message.
func (m *BoardReply) NewMessage() fx.Message { return &BoardReply{} }

// TypeID implements SerializableMessage.
func (m *BoardReply) TypeID() uint32 { return BoardReplyTypeID }

// Serializable implements SerializableMessage.
func (m *BoardReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BoardReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BoardReply) Reset() { *m = BoardReply{} }

// String implements proto.Message.
func (m *BoardReply) String() string { return proto.CompactTextString(m) }

// BoardStatus is a carrier board sample, also sent as an event.
type BoardStatus struct {
	ButtonA      bool    `protobuf:"varint,1,opt,name=button_a,json=buttonA,proto3" json:"button_a,omitempty"`
	ButtonB      bool    `protobuf:"varint,2,opt,name=button_b,json=buttonB,proto3" json:"button_b,omitempty"`
	Microphone   int32   `protobuf:"varint,3,opt,name=microphone,proto3" json:"microphone,omitempty"`
	AccelX       float32 `protobuf:"fixed32,4,opt,name=accel_x,json=accelX,proto3" json:"accel_x,omitempty"`
	AccelY       float32 `protobuf:"fixed32,5,opt,name=accel_y,json=accelY,proto3" json:"accel_y,omitempty"`
	AccelZ       float32 `protobuf:"fixed32,6,opt,name=accel_z,json=accelZ,proto3" json:"accel_z,omitempty"`
	GyroX        float32 `protobuf:"fixed32,7,opt,name=gyro_x,json=gyroX,proto3" json:"gyro_x,omitempty"`
	GyroY        float32 `protobuf:"fixed32,8,opt,name=gyro_y,json=gyroY,proto3" json:"gyro_y,omitempty"`
	GyroZ        float32 `protobuf:"fixed32,9,opt,name=gyro_z,json=gyroZ,proto3" json:"gyro_z,omitempty"`
	TemperatureC float32 `protobuf:"fixed32,10,opt,name=temperature_c,json=temperatureC,proto3" json:"temperature_c,omitempty"`
	Error        string  `protobuf:"bytes,11,opt,name=error,proto3" json:"error,omitempty"`
}

// NewMessage implements Message.
func (m *BoardStatus) NewMessage() fx.Message { return &BoardStatus{} }

// TypeID implements SerializableMessage.
func (m *BoardStatus) TypeID() uint32 { return BoardStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *BoardStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BoardStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BoardStatus) Reset() { *m = BoardStatus{} }

// String implements proto.Message.
func (m *BoardStatus) String() string { return proto.CompactTextString(m) }

// ToneSet plays a tone. Zero FrequencyHz mutes; a positive DurationMs
// mutes after the delay.
type ToneSet struct {
	FrequencyHz uint32 `protobuf:"varint,1,opt,name=frequency_hz,json=frequencyHz,proto3" json:"frequency_hz,omitempty"`
	DurationMs  uint32 `protobuf:"varint,2,opt,name=duration_ms,json=durationMs,proto3" json:"duration_ms,omitempty"`
}

// NewMessage implements Message.
func (m *ToneSet) NewMessage() fx.Message { return &ToneSet{} }

// TypeID implements SerializableMessage.
func (m *ToneSet) TypeID() uint32 { return ToneSetTypeID }

// Serializable implements SerializableMessage.
func (m *ToneSet) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ToneSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ToneSet) Reset() { *m = ToneSet{} }

// String implements proto.Message.
func (m *ToneSet) String() string { return proto.CompactTextString(m) }

// DisplayFill sets every pixel of the LED matrix to a "#rrggbb" color.
type DisplayFill struct {
	Color string `protobuf:"bytes,1,opt,name=color,proto3" json:"color,omitempty"`
}

// NewMessage implements Message.
func (m *DisplayFill) NewMessage() fx.Message { return &DisplayFill{} }

// TypeID implements SerializableMessage.
func (m *DisplayFill) TypeID() uint32 { return DisplayFillTypeID }

// Serializable implements SerializableMessage.
func (m *DisplayFill) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DisplayFill) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DisplayFill) Reset() { *m = DisplayFill{} }

// String implements proto.Message.
func (m *DisplayFill) String() string { return proto.CompactTextString(m) }

// RGBFill sets pixels of the rover RGB strip to a "#rrggbb" color. Empty
// Pixels sets the whole strip.
type RGBFill struct {
	Color  string   `protobuf:"bytes,1,opt,name=color,proto3" json:"color,omitempty"`
	Pixels []uint32 `protobuf:"varint,2,rep,packed,name=pixels,proto3" json:"pixels,omitempty"`
}

// NewMessage implements Message.
func (m *RGBFill) NewMessage() fx.Message { return &RGBFill{} }

// TypeID implements SerializableMessage.
func (m *RGBFill) TypeID() uint32 { return RGBFillTypeID }

// Serializable implements SerializableMessage.
func (m *RGBFill) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RGBFill) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RGBFill) Reset() { *m = RGBFill{} }

// String implements proto.Message.
func (m *RGBFill) String() string { return proto.CompactTextString(m) }

// GroupMaqueen is the message group of the rover controller.
const GroupMaqueen = msgs.GroupCustom | 0x00100000

// TypeIDs
const (
	MotorsSetTypeID        uint32 = GroupMaqueen | 0x0001
	LightsSetTypeID        uint32 = GroupMaqueen | 0x0002
	HaltTypeID             uint32 = GroupMaqueen | 0x0003
	EncodersResetTypeID    uint32 = GroupMaqueen | 0x0004
	PIDSetTypeID           uint32 = GroupMaqueen | 0x0005
	CompensationsSetTypeID uint32 = GroupMaqueen | 0x0006
	RGBFillTypeID          uint32 = GroupMaqueen | 0x0007
	StatusQueryTypeID      uint32 = GroupMaqueen | 0x0010
	StatusReplyTypeID      uint32 = StatusQueryTypeID | msgs.TypeIDMaskReply
	StatusEventTypeID      uint32 = StatusQueryTypeID | msgs.TypeIDKindEvent
	BoardQueryTypeID       uint32 = GroupMaqueen | 0x0020
	BoardReplyTypeID       uint32 = BoardQueryTypeID | msgs.TypeIDMaskReply
	BoardStatusEventTypeID uint32 = BoardQueryTypeID | msgs.TypeIDKindEvent
	ToneSetTypeID          uint32 = GroupMaqueen | 0x0021
	DisplayFillTypeID      uint32 = GroupMaqueen | 0x0022
)

func init() {
	msgs.MessageTypes[MotorsSetTypeID] = (*MotorsSet)(nil)
	msgs.MessageTypes[LightsSetTypeID] = (*LightsSet)(nil)
	msgs.MessageTypes[HaltTypeID] = (*Halt)(nil)
	msgs.MessageTypes[EncodersResetTypeID] = (*EncodersReset)(nil)
	msgs.MessageTypes[PIDSetTypeID] = (*PIDSet)(nil)
	msgs.MessageTypes[CompensationsSetTypeID] = (*CompensationsSet)(nil)
	msgs.MessageTypes[StatusQueryTypeID] = (*StatusQuery)(nil)
	msgs.MessageTypes[StatusReplyTypeID] = (*StatusReply)(nil)
	msgs.MessageTypes[StatusEventTypeID] = (*Status)(nil)
	msgs.MessageTypes[BoardQueryTypeID] = (*BoardQuery)(nil)
	msgs.MessageTypes[BoardReplyTypeID] = (*BoardReply)(nil)
	msgs.MessageTypes[BoardStatusEventTypeID] = (*BoardStatus)(nil)
	msgs.MessageTypes[ToneSetTypeID] = (*ToneSet)(nil)
	msgs.MessageTypes[DisplayFillTypeID] = (*DisplayFill)(nil)
	msgs.MessageTypes[RGBFillTypeID] = (*RGBFill)(nil)
}
