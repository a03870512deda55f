// Package grouper expands an unmanaged workload into the set of resources it
// references or that reference it, using a Store snapshot as its only data
// source.
package grouper

import (
	"fmt"
	"strings"

	"gomodules.xyz/sets"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubegroup.dev/kubegroup/pkg/store"
)

// podTemplate returns the pod template map of a workload. CronJobs nest it
// under spec.jobTemplate.
func podTemplate(resource string, obj *unstructured.Unstructured) (map[string]interface{}, bool) {
	path := []string{"spec", "template"}
	if resource == "cronjobs" {
		path = []string{"spec", "jobTemplate", "spec", "template"}
	}
	tmpl, found, err := unstructured.NestedMap(obj.Object, path...)
	if err != nil || !found {
		return nil, false
	}
	return tmpl, true
}

func podSpec(resource string, obj *unstructured.Unstructured) (map[string]interface{}, bool) {
	tmpl, ok := podTemplate(resource, obj)
	if !ok {
		return nil, false
	}
	spec, ok := tmpl["spec"].(map[string]interface{})
	return spec, ok
}

// podTemplateLabels returns the labels the workload assigns to its pods.
func podTemplateLabels(resource string, obj *unstructured.Unstructured) map[string]string {
	tmpl, ok := podTemplate(resource, obj)
	if !ok {
		return nil
	}
	labels, _, _ := unstructured.NestedStringMap(tmpl, "metadata", "labels")
	return labels
}

// configMapRefs returns the ConfigMap names referenced by the workload's pod
// template: env valueFrom, envFrom, and volume sources (including projected).
func configMapRefs(resource string, obj *unstructured.Unstructured) sets.String {
	return podRefs(resource, obj, "configMap", "configMapRef", "configMapKeyRef", "name")
}

// secretRefs is the Secret counterpart of configMapRefs. Secret volume
// sources name their secret with "secretName" rather than "name".
func secretRefs(resource string, obj *unstructured.Unstructured) sets.String {
	return podRefs(resource, obj, "secret", "secretRef", "secretKeyRef", "secretName")
}

func podRefs(resource string, obj *unstructured.Unstructured, volumeKey, envFromKey, envKey, volumeNameKey string) sets.String {
	refs := sets.NewString()
	spec, ok := podSpec(resource, obj)
	if !ok {
		return refs
	}

	for _, v := range sliceOfMaps(spec, "volumes") {
		if src, ok := v[volumeKey].(map[string]interface{}); ok {
			if name, _ := src[volumeNameKey].(string); name != "" {
				refs.Insert(name)
			}
		}
		projected, ok := v["projected"].(map[string]interface{})
		if !ok {
			continue
		}
		for _, src := range sliceOfMaps(projected, "sources") {
			if s, ok := src[volumeKey].(map[string]interface{}); ok {
				if name, _ := s["name"].(string); name != "" {
					refs.Insert(name)
				}
			}
		}
	}

	for _, c := range containers(spec) {
		for _, env := range sliceOfMaps(c, "env") {
			valueFrom, ok := env["valueFrom"].(map[string]interface{})
			if !ok {
				continue
			}
			if ref, ok := valueFrom[envKey].(map[string]interface{}); ok {
				if name, _ := ref["name"].(string); name != "" {
					refs.Insert(name)
				}
			}
		}
		for _, envFrom := range sliceOfMaps(c, "envFrom") {
			if ref, ok := envFrom[envFromKey].(map[string]interface{}); ok {
				if name, _ := ref["name"].(string); name != "" {
					refs.Insert(name)
				}
			}
		}
	}
	return refs
}

// pvcRefs returns the concrete PersistentVolumeClaim names the workload uses.
// For StatefulSets the volume claim template name is combined with the set
// name and the ordinal of each replica, which is how the claims are actually
// named in the cluster.
func pvcRefs(resource string, obj *unstructured.Unstructured) sets.String {
	refs := sets.NewString()
	if spec, ok := podSpec(resource, obj); ok {
		for _, v := range sliceOfMaps(spec, "volumes") {
			if src, ok := v["persistentVolumeClaim"].(map[string]interface{}); ok {
				if name, _ := src["claimName"].(string); name != "" {
					refs.Insert(name)
				}
			}
		}
	}

	if resource != "statefulsets" {
		return refs
	}

	replicas, found, err := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if err != nil || !found {
		replicas = 1
	}
	templates, _, _ := unstructured.NestedSlice(obj.Object, "spec", "volumeClaimTemplates")
	for _, t := range templates {
		tm, ok := t.(map[string]interface{})
		if !ok {
			continue
		}
		name, _, _ := unstructured.NestedString(tm, "metadata", "name")
		if name == "" {
			continue
		}
		for i := int64(0); i < replicas; i++ {
			refs.Insert(fmt.Sprintf("%s-%s-%d", name, obj.GetName(), i))
		}
	}
	return refs
}

// serviceAccountRef returns the pod template's service account, skipping the
// namespace default.
func serviceAccountRef(resource string, obj *unstructured.Unstructured) (string, bool) {
	spec, ok := podSpec(resource, obj)
	if !ok {
		return "", false
	}
	name, _ := spec["serviceAccountName"].(string)
	if name == "" {
		name, _ = spec["serviceAccount"].(string)
	}
	if name == "" || name == "default" {
		return "", false
	}
	return name, true
}

// serviceMatches reports whether the Service's selector is a non-empty subset
// match against the workload's pod-template labels.
func serviceMatches(svc *unstructured.Unstructured, resource string, workload *unstructured.Unstructured) bool {
	selector, _, _ := unstructured.NestedStringMap(svc.Object, "spec", "selector")
	return selectorMatches(selector, podTemplateLabels(resource, workload))
}

// networkPolicyMatches reports whether the policy's pod selector is a
// non-empty subset match against the workload's pod-template labels.
func networkPolicyMatches(np *unstructured.Unstructured, resource string, workload *unstructured.Unstructured) bool {
	selector, _, _ := unstructured.NestedStringMap(np.Object, "spec", "podSelector", "matchLabels")
	return selectorMatches(selector, podTemplateLabels(resource, workload))
}

// selectorMatches implements standard selector semantics: every key/value
// pair the selector specifies must be present and equal on the target. A
// selector with zero keys matches nothing, to avoid grouping everything.
func selectorMatches(selector, labels map[string]string) bool {
	if len(selector) == 0 {
		return false
	}
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}

// ingressBackendServices returns every Service an Ingress routes to, from
// rule backends and the default backend.
func ingressBackendServices(ing *unstructured.Unstructured) sets.String {
	names := sets.NewString()
	if name, _, _ := unstructured.NestedString(ing.Object, "spec", "defaultBackend", "service", "name"); name != "" {
		names.Insert(name)
	}
	rules, _, _ := unstructured.NestedSlice(ing.Object, "spec", "rules")
	for _, r := range rules {
		rm, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		http, ok := rm["http"].(map[string]interface{})
		if !ok {
			continue
		}
		for _, p := range sliceOfMaps(http, "paths") {
			name, _, _ := unstructured.NestedString(p, "backend", "service", "name")
			if name != "" {
				names.Insert(name)
			}
		}
	}
	return names
}

// routeTargetService returns the Service an OpenShift Route points to.
func routeTargetService(route *unstructured.Unstructured) string {
	name, _, _ := unstructured.NestedString(route.Object, "spec", "to", "name")
	return name
}

// hpaTargets reports whether the autoscaler's scale target is the workload.
func hpaTargets(hpa *unstructured.Unstructured, resource string, workload *unstructured.Unstructured) bool {
	kind, _, _ := unstructured.NestedString(hpa.Object, "spec", "scaleTargetRef", "kind")
	name, _, _ := unstructured.NestedString(hpa.Object, "spec", "scaleTargetRef", "name")
	return name == workload.GetName() && strings.EqualFold(kind, store.KindFor(resource))
}

func containers(podSpec map[string]interface{}) []map[string]interface{} {
	out := sliceOfMaps(podSpec, "containers")
	return append(out, sliceOfMaps(podSpec, "initContainers")...)
}

func sliceOfMaps(m map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if im, ok := item.(map[string]interface{}); ok {
			out = append(out, im)
		}
	}
	return out
}
