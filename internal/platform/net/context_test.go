package net

import (
	"context"
	"testing"
)

func TestWithRequest(t *testing.T) {
	ctx := WithRequest(context.Background(), "rid-9")
	if got := RequestID(ctx); got != "rid-9" {
		t.Fatalf("RequestID = %q", got)
	}
	if RequestID(WithRequest(context.Background(), "")) != "" {
		t.Fatalf("empty id should not be stored")
	}
}
