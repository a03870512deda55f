package sanitizers

type pvcSanitizer struct{}

func newPVCSanitizer() Sanitizer {
	return pvcSanitizer{}
}

func (s pvcSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	in, err := newDefaultSanitizer().Sanitize(in)
	if err != nil {
		return nil, err
	}

	// volumeName binds the claim to one specific PV in the source cluster.
	if spec, ok := in["spec"].(map[string]interface{}); ok {
		delete(spec, "volumeName")
		in["spec"] = spec
	}
	return in, nil
}
