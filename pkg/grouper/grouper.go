package grouper

import (
	"sort"

	"gomodules.xyz/sets"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubegroup.dev/kubegroup/pkg/classify"
	"kubegroup.dev/kubegroup/pkg/store"
)

// WorkloadGroup is one workload plus every unmanaged resource discovered to
// reference or be referenced by it. Members is sorted and deduped; the
// workload itself is always a member. Two groups may share members.
type WorkloadGroup struct {
	Workload store.ResourceRef
	Members  []store.ResourceRef

	// RBACIncomplete is set when cluster-scoped RBAC objects could not be
	// checked, as opposed to none existing.
	RBACIncomplete bool
}

// BuildGroup runs every resolution rule once against the workload and the
// store snapshot. Name references (ConfigMap, Secret, PVC, ServiceAccount)
// resolve by direct lookup; Service, Ingress/Route, HPA and NetworkPolicy
// resolve by reverse selector or target match over the full candidate set.
//
// Resolution is deliberately single-pass: a ConfigMap referenced only by a
// Service in the group is not pulled in. Managed dependencies are silently
// omitted.
func BuildGroup(workload store.ResourceRef, st *store.Store) WorkloadGroup {
	g := WorkloadGroup{Workload: workload}
	obj, ok := st.Get(workload.Resource, workload.Name)
	if !ok {
		g.Members = []store.ResourceRef{workload}
		return g
	}

	members := map[store.ResourceRef]struct{}{workload: {}}
	// add reports whether the resource joined the group. Rules that key off a
	// prior member (Ingress/Route backends, RBAC of a ServiceAccount) must use
	// the return value, not the store: a managed Service or ServiceAccount is
	// never a member and must not pull its dependents in.
	add := func(resource, name string) bool {
		dep, ok := st.Get(resource, name)
		if !ok || classify.IsManaged(resource, dep) {
			return false
		}
		members[st.RefFor(resource, name)] = struct{}{}
		return true
	}

	for _, name := range configMapRefs(workload.Resource, obj).List() {
		add("configmaps", name)
	}
	for _, name := range secretRefs(workload.Resource, obj).List() {
		add("secrets", name)
	}
	for _, name := range pvcRefs(workload.Resource, obj).List() {
		add("persistentvolumeclaims", name)
	}

	if sa, ok := serviceAccountRef(workload.Resource, obj); ok {
		if add("serviceaccounts", sa) {
			closure := resolveRBAC(sa, st)
			g.RBACIncomplete = closure.incomplete
			for _, ref := range closure.refs {
				add(ref.Resource, ref.Name)
			}
		}
	}

	services := sets.NewString()
	for _, name := range st.Names("services") {
		svc, _ := st.Get("services", name)
		if serviceMatches(svc, workload.Resource, obj) && add("services", name) {
			services.Insert(name)
		}
	}

	for _, name := range st.Names("ingresses") {
		ing, _ := st.Get("ingresses", name)
		if ingressBackendServices(ing).Intersection(services).Len() > 0 {
			add("ingresses", name)
		}
	}
	for _, name := range st.Names("routes") {
		route, _ := st.Get("routes", name)
		if services.Has(routeTargetService(route)) {
			add("routes", name)
		}
	}

	for _, name := range st.Names("horizontalpodautoscalers") {
		hpa, _ := st.Get("horizontalpodautoscalers", name)
		if hpaTargets(hpa, workload.Resource, obj) {
			add("horizontalpodautoscalers", name)
		}
	}
	for _, name := range st.Names("networkpolicies") {
		np, _ := st.Get("networkpolicies", name)
		if networkPolicyMatches(np, workload.Resource, obj) {
			add("networkpolicies", name)
		}
	}

	g.Members = sortedRefs(members)
	return g
}

// UnmanagedWorkloads returns every workload in the store that the classifier
// leaves unmanaged, in deterministic order.
func UnmanagedWorkloads(st *store.Store) []store.ResourceRef {
	var out []store.ResourceRef
	for _, resource := range store.WorkloadResources {
		for _, name := range st.Names(resource) {
			obj, _ := st.Get(resource, name)
			if !classify.IsManaged(resource, obj) {
				out = append(out, st.RefFor(resource, name))
			}
		}
	}
	return out
}

// Member returns the snapshot object behind a group member.
func Member(st *store.Store, ref store.ResourceRef) (*unstructured.Unstructured, bool) {
	return st.Get(ref.Resource, ref.Name)
}

func sortedRefs(in map[store.ResourceRef]struct{}) []store.ResourceRef {
	out := make([]store.ResourceRef, 0, len(in))
	for ref := range in {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Name < out[j].Name
	})
	return out
}
