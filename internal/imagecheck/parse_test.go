package imagecheck

import "testing"

func TestParseImageReference(t *testing.T) {
	tests := map[string]struct {
		ref      string
		expected ParsedRef
	}{
		"bare name": {
			"nginx",
			ParsedRef{Registry: DefaultRegistry, Repository: "library/nginx", Tag: "latest"},
		},
		"bare name with tag": {
			"nginx:1.27",
			ParsedRef{Registry: DefaultRegistry, Repository: "library/nginx", Tag: "1.27"},
		},
		"namespaced repo": {
			"library/nginx:1.27",
			ParsedRef{Registry: DefaultRegistry, Repository: "library/nginx", Tag: "1.27"},
		},
		"user repo no tag": {
			"grafana/grafana",
			ParsedRef{Registry: DefaultRegistry, Repository: "grafana/grafana", Tag: "latest"},
		},
		"custom registry with port": {
			"registry.example.com:5000/team/app:v2",
			ParsedRef{Registry: "registry.example.com:5000", Repository: "team/app", Tag: "v2"},
		},
		"ghcr registry": {
			"ghcr.io/owner/app:latest",
			ParsedRef{Registry: "ghcr.io", Repository: "owner/app", Tag: "latest"},
		},
		"digest pinned reference": {
			"nginx@sha256:deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			ParsedRef{Registry: DefaultRegistry, Repository: "library/nginx", Tag: "latest"},
		},
		"digest pinned with tag": {
			"nginx:1.27@sha256:deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			ParsedRef{Registry: DefaultRegistry, Repository: "library/nginx", Tag: "1.27"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ParseImageReference(tc.ref)
			if got != tc.expected {
				t.Errorf("ParseImageReference(%q) = %+v, want %+v", tc.ref, got, tc.expected)
			}
		})
	}
}
