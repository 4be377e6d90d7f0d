package main

import (
	"os"

	"github.com/eosbp/bpclaim/cmd/cli"
	"github.com/eosbp/bpclaim/common/log"
)

var (
	version = "unknown"
	build   = "unknown"
)

func main() {
	rootCmd, _ := cli.NewRootCmd(version, build)
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("Fail to execute err=%+v", err)
		os.Exit(cli.ExitCodeOf(err))
	}
}
