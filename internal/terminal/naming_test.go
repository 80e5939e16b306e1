package terminal

import "testing"

func TestNamingHelpers(t *testing.T) {
	tests := map[string]struct {
		got  string
		want string
	}{
		"compose":        {ComposeTerminalName("localhost", "my-app"), "compose-localhost-my-app"},
		"combined":       {CombinedTerminalName("localhost", "my-app"), "combined-localhost-my-app"},
		"container exec": {ContainerExecTerminalName("localhost", "my-app", "web", 2), "container-exec-localhost-my-app-web-2"},
		"container log":  {ContainerLogName("localhost", "web-1"), "container-log-localhost-web-1"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}
