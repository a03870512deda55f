package sanitizers

type metadataSanitizer struct{}

func newMetadataSanitizer() Sanitizer {
	return metadataSanitizer{}
}

// Annotations written by kubectl, OLM, and the volume binding machinery.
var scrubbedAnnotations = []string{
	"kubectl.kubernetes.io/last-applied-configuration",
	"deployment.kubernetes.io/revision",
	"olm.operatorNamespace",
	"olm.operatorGroup",
	"volume.kubernetes.io/selected-node",
	"pv.kubernetes.io/bind-completed",
	"pv.kubernetes.io/bound-by-controller",
	"volume.beta.kubernetes.io/storage-provisioner",
	"volume.kubernetes.io/storage-provisioner",
}

func (s metadataSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	meta, ok := in["metadata"].(map[string]interface{})
	if !ok {
		return in, nil
	}

	delete(meta, "creationTimestamp")
	delete(meta, "deletionTimestamp")
	delete(meta, "deletionGracePeriodSeconds")
	delete(meta, "resourceVersion")
	delete(meta, "selfLink")
	delete(meta, "uid")
	delete(meta, "generateName")
	delete(meta, "generation")
	delete(meta, "managedFields")
	delete(meta, "ownerReferences")
	delete(meta, "finalizers")

	if annotations, ok := meta["annotations"].(map[string]interface{}); ok {
		for _, key := range scrubbedAnnotations {
			delete(annotations, key)
		}
		if len(annotations) == 0 {
			delete(meta, "annotations")
		}
	}
	if labels, ok := meta["labels"].(map[string]interface{}); ok && len(labels) == 0 {
		delete(meta, "labels")
	}

	in["metadata"] = meta
	return in, nil
}
