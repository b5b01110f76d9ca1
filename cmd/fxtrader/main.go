package main

import (
	"os"

	"github.com/quantfx/trader/cmd/fxtrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
