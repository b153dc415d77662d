// Package l1 defines how a device controller (L1) talks to the tools and
// planners above it: controllers register through a Registrar and receive
// commands as loop messages; tools reach them through a Connector.
package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
)

// Registrar announces a controller and delivers its events.
type Registrar interface {
	// SendEvent publishes an event to connected tools.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command. Done sends the reply.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef is a reference to an L1 controller.
type ControllerRef struct {
	// Type is controller type (robot type).
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// String implements fmt.Stringer.
func (r ControllerRef) String() string {
	return r.Name()
}

// ParseControllerRef parses "type/id". An empty string is the zero ref.
func ParseControllerRef(name string) (ControllerRef, error) {
	if name == "" {
		return ControllerRef{}, nil
	}
	typ, id, ok := strings.Cut(name, "/")
	if !ok || typ == "" || id == "" || strings.Contains(id, "/") {
		return ControllerRef{}, fmt.Errorf("invalid controller %q, want TYPE/ID", name)
	}
	return ControllerRef{Type: typ, ID: id}, nil
}

// Set implements flag.Value.
func (r *ControllerRef) Set(name string) error {
	ref, err := ParseControllerRef(name)
	if err == nil {
		*r = ref
	}
	return err
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta provides metadata for L1 controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of an L1 controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by L2 components to connect to an L1 controller.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
