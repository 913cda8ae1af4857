package main

import (
	"os"

	"github.com/prefstore/prefstore/cmd/prefctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
