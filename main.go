package main

import (
	"os"

	"github.com/omegakit/omega/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
