package memory

import (
	"context"
	"testing"

	"survey-service/internal/domain"
)

func TestTokenStoreLifecycle(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.SaveToken(ctx, domain.Token{Value: "t1", UserName: "alice"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, ok, err := store.LookupToken(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("expected token present, ok=%v err=%v", ok, err)
	}
	if token.UserName != "alice" {
		t.Fatalf("expected alice, got %s", token.UserName)
	}

	if _, ok, _ := store.LookupToken(ctx, "missing"); ok {
		t.Fatalf("expected unknown token to be absent")
	}
}
