// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPageCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := pc.Get(ctx, "/location/rossiya")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	// Set.
	html := []byte("<html><body>Россия</body></html>")
	pc.Set(ctx, "/location/rossiya", html)

	// Hit.
	data, ok = pc.Get(ctx, "/location/rossiya")
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(html) {
		t.Errorf("data mismatch: got %q, want %q", data, html)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)

	ctx := context.Background()

	pc.Set(ctx, "/best", []byte("cached"))

	if _, ok := pc.Get(ctx, "/best"); !ok {
		t.Fatal("expected cache hit before invalidation")
	}

	pc.Invalidate(ctx, "/best")

	if _, ok := pc.Get(ctx, "/best"); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestPageCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)

	ctx := context.Background()

	pc.Set(ctx, "/", []byte("a"))
	pc.Set(ctx, "/posts", []byte("b"))
	pc.Set(ctx, "/tag/treking", []byte("c"))

	pc.InvalidateAll(ctx)

	for _, key := range []string{"/", "/posts", "/tag/treking"} {
		if _, ok := pc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}
}

func TestPathKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "_homepage"},
		{"", "_homepage"},
		{"/posts", "/posts"},
		{"/location/rossiya/kazan", "/location/rossiya/kazan"},
	}
	for _, tt := range tests {
		if got := PathKey(tt.path); got != tt.want {
			t.Errorf("PathKey(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	client := testValkeyClient(t)

	// TTL = 0 should use default.
	pc := NewPageCache(client, 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("expected DefaultPageTTL (%v), got %v", DefaultPageTTL, pc.ttl)
	}
}
