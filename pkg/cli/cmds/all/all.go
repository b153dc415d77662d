// Package all registers every command set with the shell.
package all

import (
	// command sets register in init.
	_ "github.com/robotalks/maqueen.go/pkg/cli/cmds/maqueen"
	_ "github.com/robotalks/maqueen.go/pkg/cli/cmds/teleop"
)
