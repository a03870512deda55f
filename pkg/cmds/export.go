package cmds

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"kmodules.xyz/client-go/tools/clientcmd"

	"kubegroup.dev/kubegroup/pkg/manager"
	"kubegroup.dev/kubegroup/pkg/store"
)

func NewCmdExport() *cobra.Command {
	var (
		kubeconfigPath string
		kubeContext    string
		outDir         string
	)
	opt := manager.Options{
		Workers:  manager.DefaultWorkers,
		Sanitize: true,
	}

	cmd := &cobra.Command{
		Use:   "export NAMESPACE",
		Short: "Export the unmanaged resources of a namespace as clean manifests",
		Long: `Export discovers every workload in the namespace that is not managed by
Helm, an operator, or another controller, resolves the resources each
workload references or is referenced by (ConfigMaps, Secrets, Services,
Ingresses/Routes, ServiceAccounts and their RBAC, HPAs, NetworkPolicies,
PVCs), and writes them as sanitized YAML files, grouped per workload or
flat.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Namespace = args[0]

			cfg, err := clientcmd.BuildConfigFromContext(kubeconfigPath, kubeContext)
			if err != nil {
				return fmt.Errorf("cannot load kubeconfig: %w", err)
			}
			opt.Reader, err = store.NewDynamicReader(cfg)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = fmt.Sprintf("%s-grouped-%s", opt.Namespace, time.Now().Format("2006-01-02_15-04-05"))
			}
			opt.DataDir = outDir
			opt.Storage = manager.NewFileWriter()

			summary, err := manager.NewExportManager(opt).Export(cmd.Context())
			if err != nil {
				return err
			}
			summary.Print(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Path to the kubeconfig file (defaults to the usual lookup chain)")
	cmd.Flags().StringVar(&kubeContext, "context", "", "Kubeconfig context to use")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to NAMESPACE-grouped-TIMESTAMP)")
	cmd.Flags().BoolVar(&opt.DryRun, "dry-run", false, "Build groups and print the summary without writing files")
	cmd.Flags().IntVar(&opt.Workers, "workers", manager.DefaultWorkers, "Number of workloads processed in parallel")
	cmd.Flags().BoolVar(&opt.Flat, "flat", false, "Write one file per resource at the export root instead of grouping by workload")
	cmd.Flags().BoolVar(&opt.Helmify, "helmify", false, "Run helmify on each workload directory after export")
	return cmd
}
