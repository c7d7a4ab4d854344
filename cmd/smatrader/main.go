package main

import (
	"os"

	"github.com/rustyeddy/smatrader/cmd/smatrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
