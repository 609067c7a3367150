package main

import (
	"os"

	"github.com/intentlayer/statecore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
