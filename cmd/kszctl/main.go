package main

import (
	"github.com/robotalks/ksz8863/pkg/cli/sh"
	"github.com/robotalks/ksz8863/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
