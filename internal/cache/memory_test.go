package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryClient_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("t", time.Minute)

	if _, err := c.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = (%q, %v)", got, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("deleted key should be gone, got %v", err)
	}
}

func TestMemoryClient_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)

	if err := c.Set(ctx, "short", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !IsNotFound(err) {
		t.Fatalf("expired key should be gone, got %v", err)
	}
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(Config{Kind: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestRedisOf_MemoryBackendHasNoClient(t *testing.T) {
	c := NewMemory("", time.Minute)
	if rdb, ok := RedisOf(c); ok || rdb != nil {
		t.Fatalf("memory backend should not expose a redis client, got (%v, %v)", rdb, ok)
	}

	rc := &redisClient{}
	if _, ok := RedisOf(rc); !ok {
		t.Fatal("redis backend should expose its client")
	}
}
