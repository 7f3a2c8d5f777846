package main

import (
	"os"

	"github.com/pixuli/pixuli-wasm/cmd/pixuli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
