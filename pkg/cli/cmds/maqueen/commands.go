// Package maqueen adds rover commands to the shell.
package maqueen

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/maqueen.go/pkg/cli/sh"
	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
)

// cmd wraps a builder into a connected command.
func cmd[M fx.Message](name, help string, build func([]string) (M, error), aliases ...string) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := build(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}
}

func noArgs[M fx.Message](msg func() M) func([]string) (M, error) {
	return func([]string) (M, error) { return msg(), nil }
}

var (
	// MotorsCmd exposes MotorsSet.
	MotorsCmd = cmd("motors", "LEFT|- RIGHT|- [AUTO_STOP]", MotorsMsg, "m")
	// LightsCmd exposes LightsSet.
	LightsCmd = cmd("lights", "LEFT RIGHT", LightsMsg)
	// HaltCmd exposes Halt.
	HaltCmd = cmd("halt", "", noArgs(func() *msgs.Halt { return &msgs.Halt{} }), "h")
	// StatusCmd exposes StatusQuery.
	StatusCmd = cmd("status", "", noArgs(func() *msgs.StatusQuery { return &msgs.StatusQuery{} }), "s")
	// PIDCmd exposes PIDSet.
	PIDCmd = cmd("pid", "on|off", PIDMsg)
	// CompCmd exposes CompensationsSet.
	CompCmd = cmd("comp", "LEFT|- RIGHT|-", CompensationsMsg)
	// EncodersResetCmd exposes EncodersReset.
	EncodersResetCmd = cmd("enc.reset", "", noArgs(func() *msgs.EncodersReset { return &msgs.EncodersReset{} }))
	// BoardCmd exposes BoardQuery.
	BoardCmd = cmd("board", "", noArgs(func() *msgs.BoardQuery { return &msgs.BoardQuery{} }), "b")
	// ToneCmd exposes ToneSet.
	ToneCmd = cmd("tone", "FREQ_HZ [DURATION]", ToneMsg)
	// DisplayCmd exposes DisplayFill.
	DisplayCmd = cmd("display", "#RRGGBB", DisplayMsg)
	// RGBCmd exposes RGBFill.
	RGBCmd = cmd("rgb", "#RRGGBB [PIXEL...]", RGBMsg)
)

func init() {
	sh.AddCmds(
		&MotorsCmd,
		&LightsCmd,
		&HaltCmd,
		&StatusCmd,
		&PIDCmd,
		&CompCmd,
		&EncodersResetCmd,
		&BoardCmd,
		&ToneCmd,
		&DisplayCmd,
		&RGBCmd,
	)
}
