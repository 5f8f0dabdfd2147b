package telemetry

import (
	"context"
	"testing"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "stellarsave", "")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Errorf("noop shutdown error = %v", err)
	}
}

func TestSetupWithEndpointShutsDownCleanly(t *testing.T) {
	// Non-routable address, nothing is exported before shutdown.
	shutdown, err := Setup(context.Background(), "stellarsave", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}
