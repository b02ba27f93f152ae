// Copyright (c) 2025 BVK Chaitanya

package ctxutil

import (
	"context"
	"testing"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	for i := 0; i < 100; i++ {
		i := i
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			t.Logf("%d complete", i)
		})
	}

	if err := cg.Context().Err(); err != nil {
		t.Fatalf("group context must be live before Close, got %v", err)
	}

	cg.Close()

	if err := cg.Context().Err(); err == nil {
		t.Fatalf("group context must be canceled after Close")
	}
	t.Logf("DONE")
}
