package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if _, err := p.Get(ctx, "ausente"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := p.Set(ctx, "clave", []byte("valor"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := p.Get(ctx, "clave")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "valor" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestMemoryProviderTTL(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if err := p.Set(ctx, "efimera", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := p.Get(ctx, "efimera"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired entry must miss, got %v", err)
	}
}

func TestMemoryProviderCopiesValue(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	value := []byte("original")
	if err := p.Set(ctx, "clave", value, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'X'

	got, err := p.Get(ctx, "clave")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value must be isolated from the caller's slice: %q", got)
	}
}

func TestNoopProvider(t *testing.T) {
	p := NoopProvider{}
	ctx := context.Background()

	if err := p.Set(ctx, "clave", []byte("x"), time.Minute); err != nil {
		t.Fatalf("noop set must succeed: %v", err)
	}
	if _, err := p.Get(ctx, "clave"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("noop get must always miss, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
