package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	env "github.com/robotalks/maqueen.go/pkg/l1/env/controller"
	"github.com/robotalks/maqueen.go/pkg/maqueen/controller"
	"github.com/robotalks/maqueen.go/pkg/sim/see"
)

func init() {
	env.SetControllerType(controller.ControllerType, l1.ControllerMeta{})
	env.SetupFlags()
	controller.SetupFlags()
	see.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := controller.Default()
	envConf := env.NewConfig()
	envConf.Info.Meta = conf.Meta()
	e := envConf.MustNewEnv()
	ctl, err := conf.NewController(e.Registrar)
	if err != nil {
		glog.Exit(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err = fx.NewLoop().Add(e, ctl).Run(ctx)
	if cerr := ctl.Close(); cerr != nil {
		glog.Errorf("close: %v", cerr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		glog.Exit(err)
	}
}
