package version

import "testing"

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		v1       Info
		v2       Info
		expected bool
	}{
		{"both empty", Info{}, Info{}, true},
		{"same commit", Info{GitCommit: "abc123"}, Info{GitCommit: "abc123"}, true},
		{"different commits", Info{GitCommit: "abc123"}, Info{GitCommit: "def456"}, false},
		{"one empty one set", Info{GitCommit: "abc123"}, Info{}, false},
		{
			"same commit different build time",
			Info{GitCommit: "abc123", BuildTime: "2024-01-01"},
			Info{GitCommit: "abc123", BuildTime: "2024-01-02"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v1.Equal(tt.v2); got != tt.expected {
				t.Errorf("Equal() = %v, want %v", got, tt.expected)
			}
		})
	}
}
