package grouper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gomodules.xyz/sets"
	kerr "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"kubegroup.dev/kubegroup/pkg/store"
)

const testNS = "shop"

// fakeReader serves a fixed object list, matching by kind and namespace.
// Resources in denied fail with Forbidden, like a restricted RBAC profile.
type fakeReader struct {
	objs   []*unstructured.Unstructured
	denied sets.String
}

func (f fakeReader) List(_ context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error) {
	if f.denied.Has(gvr.Resource) {
		return nil, kerr.NewForbidden(schema.GroupResource{Group: gvr.Group, Resource: gvr.Resource}, "", errors.New("no list access"))
	}
	kind := store.KindFor(gvr.Resource)
	var out []unstructured.Unstructured
	for _, o := range f.objs {
		if o.GetKind() == kind && o.GetNamespace() == namespace {
			out = append(out, *o.DeepCopy())
		}
	}
	return out, nil
}

func (f fakeReader) Get(_ context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	kind := store.KindFor(gvr.Resource)
	for _, o := range f.objs {
		if o.GetKind() == kind && o.GetNamespace() == namespace && o.GetName() == name {
			return o.DeepCopy(), nil
		}
	}
	return nil, kerr.NewNotFound(schema.GroupResource{Group: gvr.Group, Resource: gvr.Resource}, name)
}

func loadStore(t *testing.T, objs []*unstructured.Unstructured, denied ...string) *store.Store {
	t.Helper()
	r := fakeReader{
		objs:   append([]*unstructured.Unstructured{newObj("v1", "Namespace", "", testNS, nil)}, objs...),
		denied: sets.NewString(denied...),
	}
	st, err := store.Load(context.Background(), r, testNS)
	require.NoError(t, err)
	st.LoadClusterScoped(context.Background(), r)
	return st
}

func newObj(apiVersion, kind, namespace, name string, spec map[string]interface{}) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name": name,
		},
	}}
	if namespace != "" {
		u.SetNamespace(namespace)
	}
	if spec != nil {
		u.Object["spec"] = spec
	}
	return u
}

func labeled(obj *unstructured.Unstructured, labels map[string]string) *unstructured.Unstructured {
	obj.SetLabels(labels)
	return obj
}

// deployment builds an apps/v1 Deployment with the given pod labels and pod spec.
func deployment(name string, podLabels map[string]string, podSpec map[string]interface{}) *unstructured.Unstructured {
	return newObj("apps/v1", "Deployment", testNS, name, map[string]interface{}{
		"replicas": int64(1),
		"selector": map[string]interface{}{"matchLabels": toIfaceMap(podLabels)},
		"template": map[string]interface{}{
			"metadata": map[string]interface{}{"labels": toIfaceMap(podLabels)},
			"spec":     podSpec,
		},
	})
}

func service(name string, selector map[string]string) *unstructured.Unstructured {
	spec := map[string]interface{}{
		"ports": []interface{}{map[string]interface{}{"port": int64(80)}},
	}
	if selector != nil {
		spec["selector"] = toIfaceMap(selector)
	}
	return newObj("v1", "Service", testNS, name, spec)
}

func roleBinding(name, roleRefKind, roleRefName, saName string) *unstructured.Unstructured {
	rb := newObj("rbac.authorization.k8s.io/v1", "RoleBinding", testNS, name, nil)
	rb.Object["roleRef"] = map[string]interface{}{
		"apiGroup": "rbac.authorization.k8s.io",
		"kind":     roleRefKind,
		"name":     roleRefName,
	}
	rb.Object["subjects"] = []interface{}{
		map[string]interface{}{"kind": "ServiceAccount", "name": saName},
	}
	return rb
}

func toIfaceMap(in map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func refStrings(refs []store.ResourceRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}
