// internal/util/util_test.go
package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := TruncateRunes("hello", 10); got != "hello" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := TruncateRunes("hello world", 5); got != "hello…" {
		t.Fatalf("expected truncated string with ellipsis, got %q", got)
	}
	if got := TruncateRunes("héllo", 2); got != "hé…" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}

func TestMax(t *testing.T) {
	t.Parallel()

	if got := Max(2, 5); got != 5 {
		t.Fatalf("Max(2,5) = %d", got)
	}
	if got := Max(5, 2); got != 5 {
		t.Fatalf("Max(5,2) = %d", got)
	}
}
