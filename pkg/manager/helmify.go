package manager

import (
	"os"

	shell "gomodules.xyz/go-sh"
)

// helmifyDir packages one exported workload directory into a Helm chart by
// invoking the external helmify binary. Fire and forget: the outcome is
// reported per workload and never aborts other workloads.
func helmifyDir(input, output string) error {
	if err := os.MkdirAll(output, 0o777); err != nil {
		return err
	}
	sh := shell.NewSession()
	sh.ShowCMD = false
	return sh.Command("helmify", "-f", input, output).Run()
}
