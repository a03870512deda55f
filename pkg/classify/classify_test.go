package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func newTestResource(name string, labels, annotations map[string]string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: map[string]interface{}{}}
	u.SetName(name)
	u.SetNamespace("demo")
	u.SetLabels(labels)
	u.SetAnnotations(annotations)
	return u
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		resource    string
		objName     string
		labels      map[string]string
		annotations map[string]string
		owners      []metav1.OwnerReference
		wantManaged bool
		wantReason  Reason
	}{
		{
			name:        "helm chart label",
			resource:    "deployments",
			objName:     "redis",
			labels:      map[string]string{"helm.sh/chart": "redis-17.3.1"},
			wantManaged: true,
			wantReason:  ReasonHelmLabel,
		},
		{
			name:        "managed-by Helm label",
			resource:    "services",
			objName:     "redis",
			labels:      map[string]string{"app.kubernetes.io/managed-by": "Helm"},
			wantManaged: true,
			wantReason:  ReasonHelmLabel,
		},
		{
			name:     "helm label wins over owner references",
			resource: "deployments",
			objName:  "redis",
			labels:   map[string]string{"helm.sh/chart": "redis-17.3.1"},
			owners: []metav1.OwnerReference{
				{APIVersion: "apps/v1", Kind: "Deployment", Name: "parent"},
			},
			wantManaged: true,
			wantReason:  ReasonHelmLabel,
		},
		{
			name:     "owner references win over operator labels",
			resource: "configmaps",
			objName:  "cm",
			labels:   map[string]string{"app": "my-operator"},
			owners: []metav1.OwnerReference{
				{APIVersion: "apps/v1", Kind: "ReplicaSet", Name: "rs"},
			},
			wantManaged: true,
			wantReason:  ReasonOwnerReference,
		},
		{
			name:        "operator substring in label value",
			resource:    "deployments",
			objName:     "pg",
			labels:      map[string]string{"app.kubernetes.io/name": "postgres-operator"},
			wantManaged: true,
			wantReason:  ReasonOperatorLabel,
		},
		{
			name:        "controller substring in label key",
			resource:    "services",
			objName:     "webhook",
			labels:      map[string]string{"controller.cert-manager.io/fao": "true"},
			wantManaged: true,
			wantReason:  ReasonOperatorLabel,
		},
		{
			name:        "managed-by label other than Helm",
			resource:    "deployments",
			objName:     "app",
			labels:      map[string]string{"app.kubernetes.io/managed-by": "kustomize"},
			wantManaged: true,
			wantReason:  ReasonOperatorLabel,
		},
		{
			name:        "managed-by annotation other than Helm",
			resource:    "deployments",
			objName:     "app",
			annotations: map[string]string{"app.kubernetes.io/managed-by": "argocd"},
			wantManaged: true,
			wantReason:  ReasonOperatorLabel,
		},
		{
			name:        "default service account",
			resource:    "serviceaccounts",
			objName:     "default",
			labels:      map[string]string{"team": "payments"},
			wantManaged: true,
			wantReason:  ReasonSystemDefault,
		},
		{
			name:        "kube- prefixed configmap",
			resource:    "configmaps",
			objName:     "kube-root-ca.crt",
			wantManaged: true,
			wantReason:  ReasonSystemDefault,
		},
		{
			name:        "helm release secret",
			resource:    "secrets",
			objName:     "sh.helm.release.v1.redis.v1",
			wantManaged: true,
			wantReason:  ReasonSystemDefault,
		},
		{
			name:        "default token secret",
			resource:    "secrets",
			objName:     "default-token-x7z9q",
			wantManaged: true,
			wantReason:  ReasonSystemDefault,
		},
		{
			name:        "system cluster role",
			resource:    "clusterroles",
			objName:     "system:node-bootstrapper",
			wantManaged: true,
			wantReason:  ReasonSystemDefault,
		},
		{
			name:        "plain deployment is unmanaged",
			resource:    "deployments",
			objName:     "frontend",
			labels:      map[string]string{"app": "frontend"},
			wantManaged: false,
			wantReason:  ReasonNone,
		},
		{
			name:        "non-default service account is unmanaged",
			resource:    "serviceaccounts",
			objName:     "frontend-sa",
			wantManaged: false,
			wantReason:  ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newTestResource(tt.objName, tt.labels, tt.annotations)
			if len(tt.owners) > 0 {
				obj.SetOwnerReferences(tt.owners)
			}
			v := Classify(tt.resource, obj)
			assert.Equal(t, tt.wantManaged, v.Managed)
			assert.Equal(t, tt.wantReason, v.Reason)
			assert.Equal(t, tt.objName, v.Ref.Name)
			assert.Equal(t, tt.resource, v.Ref.Resource)
		})
	}
}

func TestClassifyOwnerReferenceIgnoresControllerFlag(t *testing.T) {
	// Any non-empty owner list counts, controller flag or not.
	obj := newTestResource("child", nil, nil)
	isController := false
	obj.SetOwnerReferences([]metav1.OwnerReference{
		{APIVersion: "batch/v1", Kind: "CronJob", Name: "parent", Controller: &isController},
	})

	v := Classify("jobs", obj)
	assert.True(t, v.Managed)
	assert.Equal(t, ReasonOwnerReference, v.Reason)
}
