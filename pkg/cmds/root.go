package cmds

import (
	"github.com/spf13/cobra"
	"github.com/appscode/go/flags"
	v "gomodules.xyz/x/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "kubegroup",
		Short:             "Export hand-created Kubernetes resources grouped by workload",
		DisableAutoGenTag: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			flags.DumpAll(c.Flags())
		},
	}

	rootCmd.AddCommand(NewCmdExport())
	rootCmd.AddCommand(v.NewCmdVersion())
	return rootCmd
}
