// Package teleop adds commands for the teleop controller to the shell.
package teleop

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/maqueen.go/pkg/cli/sh"
	"github.com/robotalks/maqueen.go/pkg/teleop/msgs"
)

var (
	// StatusCmd exposes TeleopStatusQuery.
	StatusCmd = ishell.Cmd{
		Name:    "js.status",
		Aliases: []string{"jss"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TeleopStatusQuery{})
		}),
	}

	// ConnectCmd points the teleop controller at a rover.
	ConnectCmd = ishell.Cmd{
		Name:    "js.connect",
		Aliases: []string{"jsc"},
		Help:    "[TYPE [ID [REGISTRY_URL]]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			ref, err := s.Resolve(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			msg := &msgs.TeleopConnect{Type: ref.Type, ID: ref.ID}
			if len(c.Args) > 2 {
				msg.RegistryURL = c.Args[2]
			}
			sh.DoCommand(c, msg)
		}),
	}

	// DisconnectCmd detaches the teleop controller from its rover.
	DisconnectCmd = ishell.Cmd{
		Name:    "js.disconnect",
		Aliases: []string{"jsd"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TeleopConnect{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&ConnectCmd,
		&DisconnectCmd,
	)
}
