package sanitizers

type serviceSanitizer struct{}

func newServiceSanitizer() Sanitizer {
	return serviceSanitizer{}
}

// Spec fields the API server or cloud provider assigns at runtime.
var serviceSpecFields = []string{
	"clusterIP",
	"clusterIPs",
	"ipFamilies",
	"ipFamilyPolicy",
	"sessionAffinityConfig",
	"externalIPs",
	"externalTrafficPolicy",
	"healthCheckNodePort",
	"loadBalancerIP",
	"loadBalancerSourceRanges",
	"publishNotReadyAddresses",
}

func (s serviceSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	in, err := newDefaultSanitizer().Sanitize(in)
	if err != nil {
		return nil, err
	}

	spec, ok := in["spec"].(map[string]interface{})
	if !ok {
		return in, nil
	}
	for _, key := range serviceSpecFields {
		delete(spec, key)
	}
	if ports, ok := spec["ports"].([]interface{}); ok {
		for _, p := range ports {
			if pm, ok := p.(map[string]interface{}); ok {
				delete(pm, "nodePort")
			}
		}
	}
	in["spec"] = spec
	return in, nil
}
