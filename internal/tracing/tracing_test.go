package tracing

import (
	"context"
	"testing"
)

func TestInitDisabledIsNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := Init(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
}

func TestInitEnabledReturnsShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{Enabled: true, Endpoint: "127.0.0.1:4318", ServiceName: "pagelens-test"})
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so shutting down must not need the collector.
	_ = shutdown(ctx)
}
