package ratelimit

import (
	"testing"
	"time"
)

func TestGateAllowsWithinBurst(t *testing.T) {
	g := NewGate(1, 3)
	for i := 0; i < 3; i++ {
		if d := g.Check("alice"); !d.Allowed {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	d := g.Check("alice")
	if d.Allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("denied decision should carry a positive RetryAfter, got %v", d.RetryAfter)
	}
}

func TestGateIsolatesIdentities(t *testing.T) {
	g := NewGate(1, 1)
	if d := g.Check("alice"); !d.Allowed {
		t.Fatal("first request should pass")
	}
	if d := g.Check("alice"); d.Allowed {
		t.Fatal("second request from same identity should be denied")
	}
	if d := g.Check("bob"); !d.Allowed {
		t.Fatal("a different identity gets its own bucket")
	}
}

func TestGateDenialDoesNotConsume(t *testing.T) {
	g := NewGate(0.001, 1)
	g.Check("alice")
	first := g.Check("alice")
	second := g.Check("alice")
	if first.Allowed || second.Allowed {
		t.Fatal("bucket should stay empty")
	}
	// Cancelled reservations must not push the retry horizon further out.
	if second.RetryAfter > first.RetryAfter+time.Second {
		t.Errorf("retry horizon grew across denials: %v then %v", first.RetryAfter, second.RetryAfter)
	}
}

func TestGateDisabled(t *testing.T) {
	g := NewGate(0, 0)
	for i := 0; i < 100; i++ {
		if d := g.Check("anyone"); !d.Allowed {
			t.Fatal("disabled gate must allow everything")
		}
	}
}

func TestGateForget(t *testing.T) {
	g := NewGate(1, 1)
	g.Check("alice")
	if d := g.Check("alice"); d.Allowed {
		t.Fatal("bucket should be empty")
	}
	g.Forget("alice")
	if d := g.Check("alice"); !d.Allowed {
		t.Fatal("forgotten identity starts with a fresh bucket")
	}
}
