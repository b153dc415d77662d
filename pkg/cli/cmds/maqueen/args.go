package maqueen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/robotalks/maqueen.go/pkg/maqueen"
	"github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
)

// MotorsMsg builds MotorsSet from "LEFT RIGHT [AUTO_STOP]".
func MotorsMsg(args []string) (*msgs.MotorsSet, error) {
	cmd, err := maqueen.ParseMotorArgs(args)
	if err != nil {
		return nil, err
	}
	m := &msgs.MotorsSet{
		KeepLeft:   cmd.Left == nil,
		KeepRight:  cmd.Right == nil,
		AutoStopMs: uint32(cmd.AutoStop / time.Millisecond),
	}
	if cmd.Left != nil {
		m.Left = int32(*cmd.Left)
	}
	if cmd.Right != nil {
		m.Right = int32(*cmd.Right)
	}
	return m, nil
}

// LightsMsg builds LightsSet from "LEFT RIGHT".
func LightsMsg(args []string) (*msgs.LightsSet, error) {
	left, right, err := maqueen.ParseLightArgs(args)
	if err != nil {
		return nil, err
	}
	return &msgs.LightsSet{Left: int32(left), Right: int32(right)}, nil
}

// CompensationsMsg builds CompensationsSet from "LEFT RIGHT".
func CompensationsMsg(args []string) (*msgs.CompensationsSet, error) {
	cmd, err := maqueen.ParseCompensationArgs(args)
	if err != nil {
		return nil, err
	}
	m := &msgs.CompensationsSet{KeepLeft: cmd.Left == nil, KeepRight: cmd.Right == nil}
	if cmd.Left != nil {
		m.Left = int32(*cmd.Left)
	}
	if cmd.Right != nil {
		m.Right = int32(*cmd.Right)
	}
	return m, nil
}

// PIDMsg builds PIDSet from "on" or "off".
func PIDMsg(args []string) (*msgs.PIDSet, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expect on|off", maqueen.ErrInvalidArgs)
	}
	switch strings.ToLower(args[0]) {
	case "on", "1", "true":
		return &msgs.PIDSet{Enable: true}, nil
	case "off", "0", "false":
		return &msgs.PIDSet{}, nil
	}
	return nil, fmt.Errorf("%w: PID %q", maqueen.ErrInvalidArgs, args[0])
}

// ToneMsg builds ToneSet from "FREQ_HZ [DURATION]".
func ToneMsg(args []string) (*msgs.ToneSet, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("%w: expect FREQ_HZ [DURATION]", maqueen.ErrInvalidArgs)
	}
	freq, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: FREQ_HZ %q", maqueen.ErrInvalidArgs, args[0])
	}
	m := &msgs.ToneSet{FrequencyHz: uint32(freq)}
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: DURATION %q", maqueen.ErrInvalidArgs, args[1])
		}
		m.DurationMs = uint32(d / time.Millisecond)
	}
	return m, nil
}

// DisplayMsg builds DisplayFill from "#RRGGBB".
func DisplayMsg(args []string) (*msgs.DisplayFill, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expect COLOR", maqueen.ErrInvalidArgs)
	}
	c, err := parseColor(args[0])
	if err != nil {
		return nil, err
	}
	return &msgs.DisplayFill{Color: c}, nil
}

// RGBMsg builds RGBFill from "#RRGGBB [PIXEL...]", no pixels fills the strip.
func RGBMsg(args []string) (*msgs.RGBFill, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: expect COLOR [PIXEL...]", maqueen.ErrInvalidArgs)
	}
	c, err := parseColor(args[0])
	if err != nil {
		return nil, err
	}
	m := &msgs.RGBFill{Color: c}
	for _, arg := range args[1:] {
		i, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: PIXEL %q", maqueen.ErrInvalidArgs, arg)
		}
		m.Pixels = append(m.Pixels, uint32(i))
	}
	return m, nil
}

// parseColor normalizes "RRGGBB" or "#RRGGBB" to lower-case "#rrggbb".
func parseColor(arg string) (string, error) {
	hex := arg
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", fmt.Errorf("%w: COLOR %q", maqueen.ErrInvalidArgs, arg)
	}
	return c.Hex(), nil
}
