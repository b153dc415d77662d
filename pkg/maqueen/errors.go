package maqueen

import "errors"

var (
	// ErrUnknownProtocol indicates an unsupported protocol name.
	ErrUnknownProtocol = errors.New("maqueen: unknown protocol")
	// ErrUnsupported indicates an operation missing from the protocol revision.
	ErrUnsupported = errors.New("maqueen: operation not supported by protocol")
	// ErrInvalidArgs indicates malformed input to a write operation.
	ErrInvalidArgs = errors.New("maqueen: invalid arguments")
	// ErrTooManyFailures stops the poll loop after consecutive read failures.
	ErrTooManyFailures = errors.New("maqueen: too many consecutive read failures")
	// ErrStopped rejects writes once the poll loop has exited.
	ErrStopped = errors.New("maqueen: poll loop stopped")
	// ErrBadBlock indicates a short read block.
	ErrBadBlock = errors.New("maqueen: malformed block")
)
