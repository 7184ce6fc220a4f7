package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l0/serial"
	"github.com/jose0796/scope.go/pkg/sim"
)

var count uint64

func init() {
	serial.SetupFlags()
	sim.SetupFlags()
	flag.Uint64Var(&count, "count", count, "Frames to write, 0 for unlimited")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	gen, err := sim.NewConfig().NewGenerator()
	if err != nil {
		glog.Exit(err)
	}

	// Frames go to stdout unless a port is given.
	var w io.Writer = os.Stdout
	if conf := serial.NewConfig(); conf.Port != "" && conf.Port != "-" {
		port, err := conf.Open()
		if err != nil {
			glog.Exitf("open serial port: %v", err)
		}
		defer port.Close()
		w = port
	}

	s := &sim.Simulator{Generator: gen, Writer: w, Limit: count}
	if err := fx.NewRunner().HandleSignals().Go(s).Wait(); err != nil {
		glog.Exit(err)
	}
}
