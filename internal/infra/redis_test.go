package infra

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClientPings(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if opt := client.Options(); opt.ReadTimeout != time.Second || opt.MinIdleConns != 2 {
		t.Fatalf("expected portal defaults, got read_timeout=%s min_idle=%d", opt.ReadTimeout, opt.MinIdleConns)
	}
}

func TestNewRedisClientKeepsURLOptions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"?read_timeout=5s")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if got := client.Options().ReadTimeout; got != 5*time.Second {
		t.Fatalf("expected url read_timeout, got %s", got)
	}
}

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestNewRedisClientRejectsEmptyURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
