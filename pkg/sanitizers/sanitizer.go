// Package sanitizers strips runtime and cluster-managed fields from resource
// bodies so the exported manifests can be re-applied elsewhere.
package sanitizers

type Sanitizer interface {
	Sanitize(in map[string]interface{}) (map[string]interface{}, error)
}

func NewSanitizer(kind string) Sanitizer {
	switch kind {
	case "Service":
		return newServiceSanitizer()
	case "PersistentVolumeClaim":
		return newPVCSanitizer()
	default:
		return newDefaultSanitizer()
	}
}

type defaultSanitizer struct{}

func newDefaultSanitizer() Sanitizer {
	return defaultSanitizer{}
}

func (s defaultSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	ms := newMetadataSanitizer()
	in, err := ms.Sanitize(in)
	if err != nil {
		return nil, err
	}
	delete(in, "status")
	return in, nil
}

// IsEmpty reports whether nothing but identity remains after sanitizing, in
// which case the object is dropped instead of written.
func IsEmpty(in map[string]interface{}) bool {
	for k := range in {
		switch k {
		case "apiVersion", "kind", "metadata":
		default:
			return false
		}
	}
	return true
}
