package manager

import (
	"fmt"
	"io"

	"kubegroup.dev/kubegroup/pkg/store"
)

// Summary reports what was exported (or would be, in dry-run mode).
type Summary struct {
	Namespace        string
	Groups           []GroupSummary
	FlatCounts       map[string]int
	UnavailableTypes []string
}

type GroupSummary struct {
	Workload       store.ResourceRef
	Members        []store.ResourceRef
	RBACIncomplete bool
	HelmifyErr     error
}

func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Export summary for namespace %s:\n", s.Namespace)

	if len(s.FlatCounts) > 0 {
		total := 0
		for _, resource := range store.KnownResources() {
			n, ok := s.FlatCounts[resource]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %s: %d\n", resource, n)
			total += n
		}
		fmt.Fprintf(w, "  total: %d objects\n", total)
	}

	if len(s.Groups) == 0 && len(s.FlatCounts) == 0 {
		fmt.Fprintln(w, "  no unmanaged workloads found")
	}
	for _, g := range s.Groups {
		fmt.Fprintf(w, "  %s (%d resources)\n", g.Workload, len(g.Members))
		for _, m := range g.Members {
			fmt.Fprintf(w, "      - %s\n", m)
		}
		if g.RBACIncomplete {
			fmt.Fprintln(w, "      ! cluster-scoped RBAC not checked (insufficient access)")
		}
		if g.HelmifyErr != nil {
			fmt.Fprintf(w, "      ! helmify failed: %v\n", g.HelmifyErr)
		}
	}

	for _, resource := range s.UnavailableTypes {
		fmt.Fprintf(w, "  ! %s could not be listed; results may be incomplete\n", resource)
	}
}
