package otp

import (
	"strconv"
	"testing"
	"time"
)

func TestGenerateIsSixDigitsInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := Generate()
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("expected numeric code, got %q", code)
		}
		if n < minCode || n > maxCode {
			t.Fatalf("code out of range: %d", n)
		}
	}
}

func TestExpiryIsTenMinutesAhead(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	if got := Expiry(now); !got.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("unexpected expiry: %s", got)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	if !IsExpired(nil, now) {
		t.Fatalf("nil expiry must be expired")
	}
	if IsExpired(&future, now) {
		t.Fatalf("future expiry must not be expired")
	}
	if !IsExpired(&past, now) {
		t.Fatalf("past expiry must be expired")
	}
}

func TestMatches(t *testing.T) {
	code := "123456"
	if !Matches(&code, "123456") {
		t.Fatalf("expected match")
	}
	if Matches(&code, "654321") {
		t.Fatalf("expected mismatch")
	}
	if Matches(nil, "123456") {
		t.Fatalf("nil stored code must never match")
	}
	empty := ""
	if Matches(&empty, "") {
		t.Fatalf("empty codes must never match")
	}
}
