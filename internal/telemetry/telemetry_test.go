package telemetry

import (
	"context"
	"os"
	"strings"
	"testing"
)

func clearOTELEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(name, "OTEL_") {
			os.Unsetenv(name)
		}
	}
}

func TestHasOTLPEndpointInEnvFalseByDefault(t *testing.T) {
	clearOTELEnv(t)
	if hasOTLPEndpointInEnv() {
		t.Error("hasOTLPEndpointInEnv() should be false with no OTEL_*ENDPOINT vars set")
	}
}

func TestHasOTLPEndpointInEnvTrue(t *testing.T) {
	clearOTELEnv(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")
	if !hasOTLPEndpointInEnv() {
		t.Error("hasOTLPEndpointInEnv() should be true when an OTEL_*ENDPOINT var is set")
	}
}

func TestInitNoopWhenUnconfigured(t *testing.T) {
	clearOTELEnv(t)
	shutdown, err := Init(context.Background(), "test")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown should not error: %v", err)
	}
}

func TestTracerNeverNil(t *testing.T) {
	if Tracer() == nil {
		t.Error("Tracer() should never return nil")
	}
}
