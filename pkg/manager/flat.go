package manager

import (
	"context"
	"fmt"
	"path/filepath"

	"k8s.io/klog/v2"

	"kubegroup.dev/kubegroup/pkg/classify"
	"kubegroup.dev/kubegroup/pkg/store"
)

// flatExportManager writes every unmanaged object of every type at the export
// root, one file per object, plus the namespace definition itself.
type flatExportManager struct {
	opt Options
}

func (m flatExportManager) Export(ctx context.Context) (*Summary, error) {
	st, err := store.Load(ctx, m.opt.Reader, m.opt.Namespace)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Namespace:        m.opt.Namespace,
		FlatCounts:       map[string]int{},
		UnavailableTypes: st.Unavailable(),
	}

	if !m.opt.DryRun {
		nsFile := filepath.Join(m.opt.DataDir, "namespace.yaml")
		if _, err := storeItem(m.opt, nsFile, st.NamespaceObject()); err != nil {
			return nil, err
		}
	}

	types := append(append([]string{}, store.WorkloadResources...), store.RelatedResources...)
	for _, resource := range types {
		for _, name := range st.Names(resource) {
			obj, _ := st.Get(resource, name)
			if classify.IsManaged(resource, obj) {
				continue
			}
			summary.FlatCounts[resource]++
			if m.opt.DryRun {
				continue
			}
			fileName := filepath.Join(m.opt.DataDir, fmt.Sprintf("%s-%s.yaml", resource, name))
			if _, err := storeItem(m.opt, fileName, obj); err != nil {
				klog.Warningf("Could not save %s/%s: %v", resource, name, err)
			}
		}
	}
	return summary, nil
}
