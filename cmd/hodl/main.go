package main

import (
	"os"

	"github.com/rustyeddy/hodl/cmd/hodl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
