package maqueen

import (
	"fmt"
	"strconv"
	"time"
)

// Placeholder for an omitted side in text arguments.
const keepArg = "-"

// ParseMotorArgs parses "LEFT RIGHT [AUTO_STOP]". A side given as "-"
// keeps its last commanded value. AUTO_STOP is a duration ("1.5s") or
// plain seconds.
func ParseMotorArgs(args []string) (cmd MotorCommand, err error) {
	if len(args) < 2 || len(args) > 3 {
		return cmd, fmt.Errorf("%w: expect LEFT RIGHT [AUTO_STOP], got %d args", ErrInvalidArgs, len(args))
	}
	if cmd.Left, err = parseSide("LEFT", args[0]); err != nil {
		return
	}
	if cmd.Right, err = parseSide("RIGHT", args[1]); err != nil {
		return
	}
	if len(args) > 2 {
		if cmd.AutoStop, err = parseDuration(args[2]); err != nil {
			return
		}
	}
	return cmd, nil
}

// ParseLightArgs parses "LEFT RIGHT".
func ParseLightArgs(args []string) (left, right int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: expect LEFT RIGHT, got %d args", ErrInvalidArgs, len(args))
	}
	if left, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: LEFT %q", ErrInvalidArgs, args[0])
	}
	if right, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: RIGHT %q", ErrInvalidArgs, args[1])
	}
	return left, right, nil
}

// ParseCompensationArgs parses "LEFT RIGHT" where "-" keeps a side.
func ParseCompensationArgs(args []string) (cmd CompensationCommand, err error) {
	if len(args) != 2 {
		return cmd, fmt.Errorf("%w: expect LEFT RIGHT, got %d args", ErrInvalidArgs, len(args))
	}
	if cmd.Left, err = parseSide("LEFT", args[0]); err != nil {
		return
	}
	cmd.Right, err = parseSide("RIGHT", args[1])
	return
}

// SetMotorsArgs is SetMotors for text input. Malformed input is recorded
// as the last error and reported as false.
func (b *Bridge) SetMotorsArgs(args ...string) bool {
	cmd, err := ParseMotorArgs(args)
	if err != nil {
		return b.reject(err)
	}
	return b.SetMotors(cmd)
}

// SetLightsArgs is SetLights for text input.
func (b *Bridge) SetLightsArgs(args ...string) bool {
	left, right, err := ParseLightArgs(args)
	if err != nil {
		return b.reject(err)
	}
	return b.SetLights(left, right)
}

func parseSide(name, arg string) (*int, error) {
	if arg == keepArg {
		return nil, nil
	}
	v, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidArgs, name, arg)
	}
	return &v, nil
}

func parseDuration(arg string) (time.Duration, error) {
	if d, err := time.ParseDuration(arg); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative AUTO_STOP %q", ErrInvalidArgs, arg)
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(arg, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("%w: AUTO_STOP %q", ErrInvalidArgs, arg)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
