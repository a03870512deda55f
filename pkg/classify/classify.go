// Package classify decides whether a resource was created by hand or is
// owned by an automation layer (Helm, an operator, or the platform itself).
package classify

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubegroup.dev/kubegroup/pkg/store"
)

// Reason explains why a resource was classified as managed.
type Reason string

const (
	ReasonHelmLabel      Reason = "HELM_LABEL"
	ReasonOwnerReference Reason = "OWNER_REFERENCE"
	ReasonOperatorLabel  Reason = "OPERATOR_LABEL"
	ReasonSystemDefault  Reason = "SYSTEM_DEFAULT"
	ReasonNone           Reason = "NONE"
)

const managedByKey = "app.kubernetes.io/managed-by"

// Verdict is the classifier's output for one resource. Derived, never persisted.
type Verdict struct {
	Ref     store.ResourceRef
	Managed bool
	Reason  Reason
}

// Classify labels a resource as managed or unmanaged. Checks run in fixed
// priority order and the first match wins, so verdicts are reproducible from
// the resource body alone.
func Classify(resource string, obj *unstructured.Unstructured) Verdict {
	v := Verdict{
		Ref: store.ResourceRef{
			Resource:  resource,
			Name:      obj.GetName(),
			Namespace: obj.GetNamespace(),
		},
	}

	labels := obj.GetLabels()
	annotations := obj.GetAnnotations()

	switch {
	case hasHelmMarker(labels):
		v.Managed, v.Reason = true, ReasonHelmLabel
	case len(obj.GetOwnerReferences()) > 0:
		v.Managed, v.Reason = true, ReasonOwnerReference
	case hasOperatorMarker(labels, annotations):
		v.Managed, v.Reason = true, ReasonOperatorLabel
	case isSystemDefault(resource, obj.GetName()):
		v.Managed, v.Reason = true, ReasonSystemDefault
	default:
		v.Reason = ReasonNone
	}
	return v
}

// IsManaged is a convenience wrapper around Classify.
func IsManaged(resource string, obj *unstructured.Unstructured) bool {
	return Classify(resource, obj).Managed
}

func hasHelmMarker(labels map[string]string) bool {
	if _, ok := labels["helm.sh/chart"]; ok {
		return true
	}
	return strings.EqualFold(labels[managedByKey], "helm")
}

func hasOperatorMarker(labels, annotations map[string]string) bool {
	for k, v := range labels {
		if containsOperatorWord(k) || containsOperatorWord(v) {
			return true
		}
	}
	if mb := labels[managedByKey]; mb != "" && !strings.EqualFold(mb, "helm") {
		return true
	}
	if mb := annotations[managedByKey]; mb != "" && !strings.EqualFold(mb, "helm") {
		return true
	}
	return false
}

func containsOperatorWord(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "operator") || strings.Contains(s, "controller")
}

// System cluster roles and bindings that ship with Kubernetes itself.
var systemClusterPrefixes = []string{
	"system:",
	"cluster-admin",
	"admin",
	"edit",
	"view",
	"kubeadm:",
	"node-",
	"kubernetes-",
}

func isSystemDefault(resource, name string) bool {
	switch resource {
	case "serviceaccounts":
		return name == "default"
	case "configmaps", "secrets":
		return strings.HasPrefix(name, "kube-") ||
			strings.HasPrefix(name, "default-token-") ||
			strings.HasPrefix(name, "sh.helm.release")
	case "clusterroles", "clusterrolebindings":
		for _, prefix := range systemClusterPrefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}
