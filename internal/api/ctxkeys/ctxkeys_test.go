package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), UserID, "user-9")
	got, ok := String(ctx, UserID)
	if !ok || got != "user-9" {
		t.Fatalf("expected user-9, got (%q, %v)", got, ok)
	}
}

func TestString_MissingOrEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := String(context.Background(), UserID); ok {
		t.Error("expected missing value")
	}
	if _, ok := String(WithValue(context.Background(), UserID, ""), UserID); ok {
		t.Error("expected empty value to count as missing")
	}
	//nolint:staticcheck // a plain string key must not match the typed key
	ctx := context.WithValue(context.Background(), "user_id", "user-9")
	if _, ok := String(ctx, UserID); ok {
		t.Error("untyped key must not collide with ctxkeys.UserID")
	}
}
