// Package framework provides the prioritized control loop every node runs:
// sensors publish at PrLvSense, command handlers run at PrLvControl and
// reporting happens at PrLvPostProc.
package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable is a background worker.
type Runnable interface {
	Run(context.Context) error
}

// Message is consumed by controllers in a loop iteration.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the iteration time.
type TimeSource interface {
	Time() time.Time
}

// ControlContext is the state of the current iteration.
type ControlContext interface {
	TimeSource
	Context() context.Context
	PriorityLevel() int
	// Messages holds the messages collected when the iteration started.
	Messages() MessageStore
	// PostRun installs one-shot hooks after the controllers at the current
	// level. Hooks installed from a hook run in the next iteration.
	PostRun(hooks ...Controller)

	LoopControl
}

// PriorityLevels is the number of priority levels.
const PriorityLevels int = 16

// Priority levels, lower runs first.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	PrLvSense    = PrLvHigh
	PrLvControl  = PrLvNormal
	PrLvActuate  = PrLvLow
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl is the loop surface available to controllers and runners.
type LoopControl interface {
	PreRunAt(priorityLevel int, controllers ...Controller)
	PostRunAt(priorityLevel int, controllers ...Controller)
	// PostMessage enqueues a message for the next iteration. Safe from any
	// goroutine.
	PostMessage(Message)
	// TriggerNext runs the next iteration without waiting for the tick.
	TriggerNext()
}

// MessageStore gives access to the messages of an iteration.
type MessageStore interface {
	ProcessMessages(MessageProcessor)

	MessageAppender
}

// MessageAppender appends messages for later processors in the same
// iteration.
type MessageAppender interface {
	AddMessages(msgs ...Message)
}

// MessageProcessor visits messages in order.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext is passed to a MessageProcessor per message.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message from the store.
	MessageTaken()
	// StopProcessing skips the remaining messages, which stay in the store.
	StopProcessing()

	MessageAppender
}
