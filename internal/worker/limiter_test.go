package worker

import (
	"context"
	"testing"
	"time"
)

// allow takes a token for rawURL without waiting
func allow(l *Limiter, rawURL string) bool {
	host, err := hostOf(rawURL)
	if err != nil {
		return false
	}
	return l.get(host).Allow()
}

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 4 {
		t.Errorf("expected default burst 4 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://www.w3.org/2018/credentials/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host has its own bucket
	if err := limiter.Wait(ctx, "https://w3id.org/security/v2"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	url := "https://slow.example/ctx"

	if !allow(limiter, url) {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected error when the context ends before a token is available")
	}
}

func TestLimiter_PerHostBuckets(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "https://example.com/ctx.jsonld"

	if !allow(limiter, url) {
		t.Errorf("first request should pass")
	}
	if allow(limiter, url) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Host matching is case-insensitive
	if allow(limiter, "https://EXAMPLE.com/other") {
		t.Errorf("expected shared bucket for the same host")
	}

	if !allow(limiter, "https://other.com/ctx") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 50; i++ {
		if !allow(limiter, "https://example.com/ctx") {
			t.Fatalf("request %d should pass with limiting disabled", i)
		}
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("Slow.com", 0.1, 1)

	if !allow(limiter, "http://slow.com") {
		t.Errorf("first request should pass")
	}
	if allow(limiter, "http://slow.com") {
		t.Errorf("second request should fail")
	}
	if !allow(limiter, "http://fast.com") {
		t.Errorf("other host should pass")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("https://www.W3.org/2018/credentials/v1")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "www.w3.org" {
		t.Errorf("expected www.w3.org, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
	if _, err := hostOf("./local.json"); err == nil {
		t.Errorf("expected error for a URL without host")
	}
}
