package redis

import (
	"context"
	"testing"
	"time"

	"survey-service/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewTokenStore(newClient(mr))
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SaveToken(ctx, domain.Token{Value: "tok-1", UserName: "testuser", CreatedAt: created}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if !mr.Exists("survey:token:tok-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("survey:token:tok-1"); ttl != 0 {
		t.Fatalf("expected token without expiry, got ttl %v", ttl)
	}

	token, ok, err := store.LookupToken(ctx, "tok-1")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if token.UserName != "testuser" || !token.CreatedAt.Equal(created) {
		t.Fatalf("unexpected token %+v", token)
	}

	if _, ok, err := store.LookupToken(ctx, "unknown"); ok || err != nil {
		t.Fatalf("expected unknown token absent without error, ok=%v err=%v", ok, err)
	}
}
