package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	connenv "github.com/robotalks/maqueen.go/pkg/l1/env/connector"
	env "github.com/robotalks/maqueen.go/pkg/l1/env/controller"
	"github.com/robotalks/maqueen.go/pkg/teleop"
)

func init() {
	env.SetControllerType(teleop.ControllerType, teleop.Default().Meta())
	env.SetupFlags()
	connenv.SetupFlags()
	teleop.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.NewConfig().MustNewEnv()
	ctl := teleop.NewConfig().NewController(e)
	ctl.Target = connenv.Default().Ref
	defer ctl.Close()
	fx.NewLoop().Add(e, ctl).RunOrFail()
}
