package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"k8s.io/klog/v2"

	"kubegroup.dev/kubegroup/pkg/grouper"
	"kubegroup.dev/kubegroup/pkg/store"
)

// groupedExportManager builds one directory per unmanaged workload, each
// holding the workload and everything grouped with it.
type groupedExportManager struct {
	opt Options
}

func (m groupedExportManager) Export(ctx context.Context) (*Summary, error) {
	st, err := store.Load(ctx, m.opt.Reader, m.opt.Namespace)
	if err != nil {
		return nil, err
	}
	st.LoadClusterScoped(ctx, m.opt.Reader)
	if !st.HasClusterScope() {
		klog.V(2).Info("Cluster-scoped RBAC cache unavailable, degrading to namespaced objects")
	}

	workloads := grouper.UnmanagedWorkloads(st)
	klog.Infof("Found %d unmanaged workloads in namespace %s", len(workloads), m.opt.Namespace)

	summary := &Summary{
		Namespace:        m.opt.Namespace,
		UnavailableTypes: st.Unavailable(),
	}

	// One workload's group-build-and-export pipeline is the unit of
	// concurrency. The store is read-only here, shared without locking.
	var wg sync.WaitGroup
	sem := make(chan struct{}, m.opt.Workers)
	results := make([]GroupSummary, len(workloads))
	for i, w := range workloads {
		wg.Add(1)
		go func(i int, w store.ResourceRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = m.processWorkload(w, st)
		}(i, w)
	}
	wg.Wait()

	summary.Groups = results
	return summary, nil
}

func (m groupedExportManager) processWorkload(w store.ResourceRef, st *store.Store) GroupSummary {
	klog.V(2).Infof("Processing %s", w)
	g := grouper.BuildGroup(w, st)
	gs := GroupSummary{
		Workload:       w,
		Members:        g.Members,
		RBACIncomplete: g.RBACIncomplete,
	}
	if m.opt.DryRun {
		return gs
	}

	if err := m.dumpGroup(g, st); err != nil {
		klog.Warningf("Export of %s incomplete: %v", w, err)
	}
	if m.opt.Helmify {
		dir := filepath.Join(m.opt.DataDir, w.Name)
		if err := helmifyDir(dir, dir+"-helmified"); err != nil {
			klog.Warningf("Helmify failed for %s: %v", w, err)
			gs.HelmifyErr = err
		}
	}
	return gs
}

// dumpGroup writes every member as <dir>/<workload>/<type>-<name>.yaml.
// Per-object failures are logged and skipped, not fatal.
func (m groupedExportManager) dumpGroup(g grouper.WorkloadGroup, st *store.Store) error {
	var firstErr error
	for _, ref := range g.Members {
		obj, ok := grouper.Member(st, ref)
		if !ok {
			continue
		}
		fileName := filepath.Join(m.opt.DataDir, g.Workload.Name, fmt.Sprintf("%s-%s.yaml", ref.Resource, ref.Name))
		if _, err := storeItem(m.opt, fileName, obj); err != nil {
			klog.Warningf("Could not save %s: %v", ref, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
