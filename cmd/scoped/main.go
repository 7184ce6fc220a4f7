package main

//go-build: CGO_ENABLED=0

import (
	"errors"
	"flag"
	"os"

	"github.com/golang/glog"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l0/serial"
	"github.com/jose0796/scope.go/pkg/l1/comm/mqtt"
	"github.com/jose0796/scope.go/pkg/l1/env"
	"github.com/jose0796/scope.go/pkg/l1/env/daemon"
)

var configFile string

func init() {
	serial.SetupFlags()
	daemon.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "Config file, keys are flag names")
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if configFile != "" {
		if err := env.LoadFile(flag.CommandLine, configFile); err != nil {
			glog.Exit(err)
		}
	}

	meta := mqtt.StationMeta{Description: "4-channel serial oscilloscope"}
	var src frame.ByteSource
	if conf := serial.NewConfig(); conf.Port == "-" {
		src, meta.Port = frame.NewStreamSource(os.Stdin), "stdin"
	} else {
		port, err := conf.Open()
		if err != nil {
			glog.Exitf("open serial port: %v", err)
		}
		defer port.Close()
		src, meta.Port = port.Source(), port.Name
	}

	e, err := daemon.NewConfig().NewEnv(src, os.Stdout, meta)
	if err != nil {
		glog.Exit(err)
	}
	err = fx.NewRunner().HandleSignals().Go(e.Runnables()...).Wait()
	switch {
	case err == nil:
	case errors.Is(err, frame.ErrTransportUnderrun), errors.Is(err, frame.ErrSyncTimeout):
		glog.Exitf("serial link lost on %s: %v", meta.Port, err)
	default:
		glog.Exit(err)
	}
}
