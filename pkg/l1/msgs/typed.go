package msgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed is the wire envelope. Sequence pairs a reply with its command.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// TypedMsgHandler handles a decoded command.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// ErrUnknownType indicates an unregistered type ID.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message has no wire form.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates no handler took the command.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be sent over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type IDs to prototypes. Packages add their messages in
// init.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:  (*CommandOK)(nil),
	CommandErrTypeID: (*CommandErr)(nil),
}

// TypedFrom wraps a serializable message.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// Decode decodes the payload into a registered message.
func (p *Typed) Decode() (fx.Message, error) {
	msgType, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the envelope.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// Kind returns the kind bit of the type ID.
func (p *Typed) Kind() uint32 {
	return p.TypeId & TypeIDMaskKind
}

// IsCommand reports whether the message is a command or a reply.
func (p *Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent reports whether the message is an event.
func (p *Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// IsReply reports whether the message replies to a command.
func (p *Typed) IsReply() bool {
	return p.IsCommand() && p.TypeId&TypeIDMaskReply != 0
}

// DecodeTyped decodes an envelope.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}
