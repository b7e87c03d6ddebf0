package host

import (
	"context"
	"testing"
)

func TestShutdown(t *testing.T) {
	if err := Shutdown(context.Background(), "true"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := Shutdown(context.Background(), "false --halt"); err == nil {
		t.Fatalf("expected failure from a failing command")
	}
	if err := Shutdown(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty command")
	}
}
