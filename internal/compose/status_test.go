package compose

import "testing"

func TestStatusConvert(t *testing.T) {
	tests := map[string]struct {
		raw      string
		expected Status
	}{
		"running only": {"running(2)", StatusRunning},
		"exited only":  {"exited(1)", StatusExited},
		"mixed":        {"running(1), exited(1)", StatusRunningAndExited},
		"neither":      {"created(1)", StatusCreatedStack},
		"empty":        {"", StatusCreatedStack},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := StatusConvert(tc.raw); got != tc.expected {
				t.Errorf("StatusConvert(%q) = %v, want %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusUnknown:          "unknown",
		StatusCreatedFile:      "created_file",
		StatusCreatedStack:     "created_stack",
		StatusRunning:          "running",
		StatusExited:           "exited",
		StatusRunningAndExited: "running_and_exited",
		StatusUnhealthy:        "unhealthy",
		Status(99):             "unknown",
	}
	for status, expected := range tests {
		if got := status.String(); got != expected {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, expected)
		}
	}
}
