package grouper

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubegroup.dev/kubegroup/pkg/store"
)

// rbacClosure is the set of bindings and roles granting permissions to one
// ServiceAccount. incomplete means cluster-scoped objects could not be
// checked, which is distinct from none existing.
type rbacClosure struct {
	refs       []store.ResourceRef
	incomplete bool
}

// resolveRBAC walks RoleBindings and ClusterRoleBindings whose subject list
// contains the ServiceAccount, then resolves each binding's role reference.
// Bindings reference subjects and roles indirectly, so both hops are needed.
func resolveRBAC(saName string, st *store.Store) rbacClosure {
	var c rbacClosure

	for _, name := range st.Names("rolebindings") {
		rb, _ := st.Get("rolebindings", name)
		if !subjectsContain(rb, saName, st.Namespace) {
			continue
		}
		c.refs = append(c.refs, st.RefFor("rolebindings", name))
		c.resolveRoleRef(rb, st)
	}

	if !st.HasClusterScope() {
		c.incomplete = true
		return c
	}

	for _, name := range st.Names("clusterrolebindings") {
		crb, _ := st.Get("clusterrolebindings", name)
		if !subjectsContain(crb, saName, st.Namespace) {
			continue
		}
		c.refs = append(c.refs, st.RefFor("clusterrolebindings", name))
		c.resolveRoleRef(crb, st)
	}
	return c
}

func (c *rbacClosure) resolveRoleRef(binding *unstructured.Unstructured, st *store.Store) {
	kind, _, _ := unstructured.NestedString(binding.Object, "roleRef", "kind")
	name, _, _ := unstructured.NestedString(binding.Object, "roleRef", "name")
	if name == "" {
		return
	}

	switch kind {
	case "Role":
		if _, ok := st.Get("roles", name); ok {
			c.refs = append(c.refs, st.RefFor("roles", name))
		}
	case "ClusterRole":
		// RoleBindings may reference ClusterRoles too.
		if !st.HasClusterScope() {
			c.incomplete = true
			return
		}
		if _, ok := st.Get("clusterroles", name); ok {
			c.refs = append(c.refs, st.RefFor("clusterroles", name))
		}
	}
}

// subjectsContain reports whether the binding's subject list names the
// ServiceAccount. Namespaced subjects default to the binding's own namespace.
func subjectsContain(binding *unstructured.Unstructured, saName, namespace string) bool {
	subjects, _, _ := unstructured.NestedSlice(binding.Object, "subjects")
	for _, s := range subjects {
		sm, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		kind, _ := sm["kind"].(string)
		name, _ := sm["name"].(string)
		subjNS, _ := sm["namespace"].(string)
		if subjNS == "" {
			subjNS = binding.GetNamespace()
		}
		if subjNS == "" {
			// ClusterRoleBinding subjects carry an explicit namespace;
			// without one there is nothing to match against.
			subjNS = namespace
		}
		if kind == "ServiceAccount" && name == saName && subjNS == namespace {
			return true
		}
	}
	return false
}
