package main

import (
	"os"

	"github.com/vector76/catchup/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
