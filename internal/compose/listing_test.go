package compose

import "testing"

func TestParseLsEntriesJSONArray(t *testing.T) {
	out := []byte(`[{"Name":"app1","Status":"running(1)","ConfigFiles":"/x/compose.yaml"}]`)
	entries, err := parseLsEntries(out)
	if err != nil {
		t.Fatalf("parseLsEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "app1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseLsEntriesNDJSON(t *testing.T) {
	out := []byte("{\"Name\":\"app1\",\"Status\":\"running(1)\"}\n{\"Name\":\"app2\",\"Status\":\"exited(1)\"}\n")
	entries, err := parseLsEntries(out)
	if err != nil {
		t.Fatalf("parseLsEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "app1" || entries[1].Name != "app2" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseLsEntriesEmpty(t *testing.T) {
	entries, err := parseLsEntries([]byte("  \n"))
	if err != nil {
		t.Fatalf("parseLsEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %+v, want nil", entries)
	}
}

func TestParsePsEntries(t *testing.T) {
	out := []byte(`[{"Service":"web","State":"running","Health":"","Image":"nginx"},{"Service":"db","State":"running","Health":"healthy","Image":"postgres"}]`)
	entries, err := parsePsEntries(out)
	if err != nil {
		t.Fatalf("parsePsEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[1].Health != "healthy" {
		t.Errorf("entries[1].Health = %q, want healthy", entries[1].Health)
	}
}

func TestStripValidatingPrefix(t *testing.T) {
	tests := map[string]string{
		"validating /tmp/compose.yaml: services.web.image is required": "services.web.image is required",
		"some other docker error":                                      "some other docker error",
	}
	for in, want := range tests {
		if got := stripValidatingPrefix(in); got != want {
			t.Errorf("stripValidatingPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
