package otel

import (
	"context"
	"testing"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("DUSKHAVEN_OTEL_ENDPOINT", "")
	t.Setenv("DUSKHAVEN_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "matchmaker")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected no-op shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupExplicitlyDisabled(t *testing.T) {
	t.Setenv("DUSKHAVEN_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("DUSKHAVEN_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "matchmaker")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
