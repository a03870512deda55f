package main

import (
	"os"

	"gomodules.xyz/logs"

	"kubegroup.dev/kubegroup/pkg/cmds"
)

func main() {
	rootCmd := cmds.NewRootCmd()
	logs.Init(rootCmd, true)
	defer logs.FlushLogs()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
