package main

import (
	"github.com/jose0796/scope.go/pkg/cli/sh"
	"github.com/jose0796/scope.go/pkg/l0/serial"

	_ "github.com/jose0796/scope.go/pkg/cli/cmds/calib"
	_ "github.com/jose0796/scope.go/pkg/cli/cmds/frames"
)

//go-build: CGO_ENABLED=0

func init() {
	serial.SetupFlags()
}

func main() {
	sh.Main()
}
