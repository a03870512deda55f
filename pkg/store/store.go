package store

import (
	"context"
	"fmt"
	"sort"

	"gomodules.xyz/sets"
	kerr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/klog/v2"
)

// Reader is the cluster read collaborator. The production implementation
// wraps a dynamic client; tests substitute an in-memory fixture.
type Reader interface {
	List(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error)
	Get(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error)
}

type dynamicReader struct {
	di dynamic.Interface
}

// NewDynamicReader builds a Reader backed by a dynamic client.
func NewDynamicReader(config *rest.Config) (Reader, error) {
	config.QPS = 1e6
	config.Burst = 1e6
	di, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	return dynamicReader{di: di}, nil
}

// NewDynamicReaderFromClient builds a Reader from an existing dynamic client.
func NewDynamicReaderFromClient(di dynamic.Interface) Reader {
	return dynamicReader{di: di}
}

func (r dynamicReader) List(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error) {
	var ri dynamic.ResourceInterface
	if namespace != "" {
		ri = r.di.Resource(gvr).Namespace(namespace)
	} else {
		ri = r.di.Resource(gvr)
	}

	var items []unstructured.Unstructured
	var next string
	for {
		resp, err := ri.List(ctx, metav1.ListOptions{
			Limit:    250,
			Continue: next,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)

		next = resp.GetContinue()
		if next == "" {
			break
		}
	}
	return items, nil
}

func (r dynamicReader) Get(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	var ri dynamic.ResourceInterface
	if namespace != "" {
		ri = r.di.Resource(gvr).Namespace(namespace)
	} else {
		ri = r.di.Resource(gvr)
	}
	return ri.Get(ctx, name, metav1.GetOptions{})
}

// Store is a snapshot of every relevant resource in the target namespace,
// fetched with one listing call per type and indexed by (type, name). It is
// read-only after Load and safe to share across workers.
type Store struct {
	Namespace string

	namespaceObj    *unstructured.Unstructured
	objects         map[string]map[string]*unstructured.Unstructured
	unavailable     sets.String
	partialErrs     []*PartialAccessError
	hasClusterScope bool
}

// Load populates a Store from the namespaced resource types. The namespace
// object itself is fetched first; a missing namespace is fatal. A type that
// cannot be listed is degraded to unavailable, not fatal, unless every type
// fails.
func Load(ctx context.Context, r Reader, namespace string) (*Store, error) {
	nsObj, err := r.Get(ctx, namespacesGVR, "", namespace)
	if err != nil {
		return nil, &NamespaceNotFoundError{Namespace: namespace, Err: err}
	}

	s := &Store{
		Namespace:    namespace,
		namespaceObj: nsObj,
		objects:      map[string]map[string]*unstructured.Unstructured{},
		unavailable:  sets.NewString(),
	}

	types := append(append([]string{}, WorkloadResources...), RelatedResources...)
	for _, resource := range types {
		if err := s.loadType(ctx, r, resource, namespace); err != nil {
			return nil, err
		}
	}
	if s.unavailable.Len() == len(types) {
		return nil, fmt.Errorf("unable to list any resource type in namespace %s", namespace)
	}
	return s, nil
}

// LoadClusterScoped fetches ClusterRoles and ClusterRoleBindings into the
// store's cluster-scoped cache. On failure the cache stays absent and RBAC
// resolution degrades to namespaced objects only.
func (s *Store) LoadClusterScoped(ctx context.Context, r Reader) {
	for _, resource := range ClusterScopedResources {
		if err := s.loadType(ctx, r, resource, ""); err != nil {
			return
		}
	}
	for _, resource := range ClusterScopedResources {
		if s.unavailable.Has(resource) {
			return
		}
	}
	s.hasClusterScope = true
}

func (s *Store) loadType(ctx context.Context, r Reader, resource, namespace string) error {
	gvr, ok := GVRFor(resource)
	if !ok {
		return fmt.Errorf("unknown resource type %q", resource)
	}

	items, err := r.List(ctx, gvr, namespace)
	if err != nil {
		if kerr.IsNotFound(err) {
			// API not served on this cluster, e.g. routes off OpenShift.
			klog.V(4).Infof("Resource type %s not available: %v", resource, err)
			s.unavailable.Insert(resource)
			return nil
		}
		klog.Warningf("Cannot list %s: %v", resource, err)
		s.unavailable.Insert(resource)
		s.partialErrs = append(s.partialErrs, &PartialAccessError{Resource: resource, Err: err})
		return nil
	}

	byName := make(map[string]*unstructured.Unstructured, len(items))
	for i := range items {
		byName[items[i].GetName()] = &items[i]
	}
	s.objects[resource] = byName
	return nil
}

// Get returns the snapshot object for (resource, name).
func (s *Store) Get(resource, name string) (*unstructured.Unstructured, bool) {
	obj, ok := s.objects[resource][name]
	return obj, ok
}

// Names returns the sorted names of every cached object of the given type.
func (s *Store) Names(resource string) []string {
	byName := s.objects[resource]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available reports whether the given type was listed successfully.
func (s *Store) Available(resource string) bool {
	return !s.unavailable.Has(resource)
}

// Unavailable returns the sorted types that could not be listed.
func (s *Store) Unavailable() []string {
	return s.unavailable.List()
}

// PartialErrors returns the permission failures recorded during Load.
func (s *Store) PartialErrors() []*PartialAccessError {
	return s.partialErrs
}

// HasClusterScope reports whether the cluster-scoped cache was loaded.
func (s *Store) HasClusterScope() bool {
	return s.hasClusterScope
}

// NamespaceObject returns the namespace definition fetched during Load.
func (s *Store) NamespaceObject() *unstructured.Unstructured {
	return s.namespaceObj
}

// RefFor builds the ResourceRef for a cached object of the given type.
func (s *Store) RefFor(resource, name string) ResourceRef {
	ref := ResourceRef{Resource: resource, Name: name}
	if !IsClusterScoped(resource) {
		ref.Namespace = s.Namespace
	}
	return ref
}
