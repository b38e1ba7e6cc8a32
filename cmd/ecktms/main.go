package main

import (
	"fmt"
	"os"

	"github.com/xelth-com/ecktms/internal/cli"
	"github.com/xelth-com/ecktms/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger.Initialize()
	defer logger.Sync()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
