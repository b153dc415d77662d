package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"github.com/robotalks/maqueen.go/pkg/maqueen/controller"
	"github.com/robotalks/maqueen.go/pkg/selftest"
)

var suite = selftest.Suite{
	Step:    selftest.DefaultStep,
	Settle:  selftest.DefaultSettle,
	Power:   selftest.DefaultPower,
	Samples: selftest.DefaultSamples,
}

func init() {
	controller.SetupFlags()
	flag.DurationVar(&suite.Step, "step", suite.Step, "How long each action is held.")
	flag.DurationVar(&suite.Settle, "settle", suite.Settle, "Wait for a fresh reading.")
	flag.IntVar(&suite.Power, "power", suite.Power, "Motor power used for the drive steps.")
	flag.IntVar(&suite.Samples, "samples", suite.Samples, "Readings per sensor step.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	// nothing is reported, so no registrar.
	ctl, err := controller.Default().NewController(nil)
	if err != nil {
		glog.Exit(err)
	}
	ctl.Bridge.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	suite.Bridge, suite.Board, suite.Out = ctl.Bridge, ctl.Board, os.Stdout
	fmt.Printf("%s on %s\n", ctl.Bridge.Name(), ctl.Bridge.Protocol())
	results := suite.Run(ctx)
	if err := ctl.Close(); err != nil {
		glog.Errorf("close: %v", err)
	}

	passed, skipped, failed := selftest.Summary(results)
	fmt.Printf("%d passed, %d skipped, %d failed\n", passed, skipped, failed)
	if failed > 0 || ctx.Err() != nil {
		glog.Flush()
		os.Exit(1)
	}
}
