package store

import (
	"sort"

	core "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceRef identifies a single resource by its lowercase plural type and
// name. Cluster-scoped objects carry an empty Namespace. (Resource, Name) is
// the dedup key everywhere.
type ResourceRef struct {
	Resource  string
	Name      string
	Namespace string
}

func (r ResourceRef) String() string {
	return r.Resource + "/" + r.Name
}

// WorkloadResources are the top-level types a group is built around.
var WorkloadResources = []string{
	"deployments",
	"statefulsets",
	"daemonsets",
	"cronjobs",
	"jobs",
}

// RelatedResources are the namespaced types that may belong to a workload's group.
var RelatedResources = []string{
	"configmaps",
	"secrets",
	"services",
	"persistentvolumeclaims",
	"serviceaccounts",
	"roles",
	"rolebindings",
	"ingresses",
	"routes",
	"networkpolicies",
	"horizontalpodautoscalers",
}

// ClusterScopedResources are fetched separately and may be unavailable under
// restricted RBAC.
var ClusterScopedResources = []string{
	"clusterroles",
	"clusterrolebindings",
}

var namespacesGVR = schema.GroupVersionResource{Group: core.GroupName, Version: "v1", Resource: "namespaces"}

var gvrByResource = map[string]schema.GroupVersionResource{
	"deployments":              {Group: "apps", Version: "v1", Resource: "deployments"},
	"statefulsets":             {Group: "apps", Version: "v1", Resource: "statefulsets"},
	"daemonsets":               {Group: "apps", Version: "v1", Resource: "daemonsets"},
	"cronjobs":                 {Group: "batch", Version: "v1", Resource: "cronjobs"},
	"jobs":                     {Group: "batch", Version: "v1", Resource: "jobs"},
	"configmaps":               {Group: core.GroupName, Version: "v1", Resource: "configmaps"},
	"secrets":                  {Group: core.GroupName, Version: "v1", Resource: "secrets"},
	"services":                 {Group: core.GroupName, Version: "v1", Resource: "services"},
	"serviceaccounts":          {Group: core.GroupName, Version: "v1", Resource: "serviceaccounts"},
	"persistentvolumeclaims":   {Group: core.GroupName, Version: "v1", Resource: "persistentvolumeclaims"},
	"namespaces":               namespacesGVR,
	"roles":                    {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "roles"},
	"rolebindings":             {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "rolebindings"},
	"clusterroles":             {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"},
	"clusterrolebindings":      {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterrolebindings"},
	"ingresses":                {Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
	"networkpolicies":          {Group: "networking.k8s.io", Version: "v1", Resource: "networkpolicies"},
	"horizontalpodautoscalers": {Group: "autoscaling", Version: "v2", Resource: "horizontalpodautoscalers"},
	"routes":                   {Group: "route.openshift.io", Version: "v1", Resource: "routes"},
}

var kindByResource = map[string]string{
	"deployments":              "Deployment",
	"statefulsets":             "StatefulSet",
	"daemonsets":               "DaemonSet",
	"cronjobs":                 "CronJob",
	"jobs":                     "Job",
	"configmaps":               "ConfigMap",
	"secrets":                  "Secret",
	"services":                 "Service",
	"serviceaccounts":          "ServiceAccount",
	"persistentvolumeclaims":   "PersistentVolumeClaim",
	"namespaces":               "Namespace",
	"roles":                    "Role",
	"rolebindings":             "RoleBinding",
	"clusterroles":             "ClusterRole",
	"clusterrolebindings":      "ClusterRoleBinding",
	"ingresses":                "Ingress",
	"networkpolicies":          "NetworkPolicy",
	"horizontalpodautoscalers": "HorizontalPodAutoscaler",
	"routes":                   "Route",
}

// GVRFor maps a lowercase plural resource to its GroupVersionResource.
func GVRFor(resource string) (schema.GroupVersionResource, bool) {
	gvr, ok := gvrByResource[resource]
	return gvr, ok
}

// KindFor maps a lowercase plural resource to its kind, e.g. "configmaps" -> "ConfigMap".
func KindFor(resource string) string {
	return kindByResource[resource]
}

// KnownResources returns every registered plural type, sorted.
func KnownResources() []string {
	out := make([]string, 0, len(gvrByResource))
	for r := range gvrByResource {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// IsClusterScoped reports whether the given plural type is cluster-scoped.
func IsClusterScoped(resource string) bool {
	return resource == "clusterroles" || resource == "clusterrolebindings"
}
