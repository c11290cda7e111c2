package util

import "testing"

func TestMin(t *testing.T) {
	if got := Min(3, 7); got != 3 {
		t.Fatalf("Min(3, 7) = %d, want 3", got)
	}
	if got := Min(uint64(9), uint64(2)); got != 2 {
		t.Fatalf("Min(9, 2) = %d, want 2", got)
	}
}

func TestRounddown(t *testing.T) {
	if got := Rounddown(4097, 4096); got != 4096 {
		t.Fatalf("Rounddown(4097, 4096) = %d, want 4096", got)
	}
	if got := Rounddown(4096, 4096); got != 4096 {
		t.Fatalf("Rounddown(4096, 4096) = %d, want 4096", got)
	}
}

func TestRoundup(t *testing.T) {
	if got := Roundup(4097, 4096); got != 8192 {
		t.Fatalf("Roundup(4097, 4096) = %d, want 8192", got)
	}
	if got := Roundup(4096, 4096); got != 4096 {
		t.Fatalf("Roundup(4096, 4096) = %d, want 4096", got)
	}
}
