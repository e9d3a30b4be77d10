package main

import (
	"os"

	"github.com/caderno-labs/caderno-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
