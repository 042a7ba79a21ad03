package ratelimit

import (
	"testing"
	"time"
)

func TestAllowDrainsAndRefills(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewWithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4", 3, 1) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("1.2.3.4", 3, 1) {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("5.6.7.8", 3, 1) {
		t.Fatalf("other keys have their own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("1.2.3.4", 3, 1) {
		t.Fatalf("one token should have refilled")
	}
	if l.Allow("1.2.3.4", 3, 1) {
		t.Fatalf("only one token should have refilled")
	}
}

func TestAllowCapsAtCapacity(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewWithClock(func() time.Time { return now })
	l.Allow("k", 2, 10)
	now = now.Add(time.Hour)
	passed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("k", 2, 10) {
			passed++
		}
	}
	if passed != 2 {
		t.Fatalf("passed = %d, want 2", passed)
	}
}

func TestForget(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewWithClock(func() time.Time { return now })
	l.Allow("old", 1, 1)
	now = now.Add(time.Hour)
	l.Allow("fresh", 1, 1)
	if n := l.Forget(time.Minute); n != 1 {
		t.Fatalf("forgot %d, want 1", n)
	}
}
