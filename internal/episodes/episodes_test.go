package episodes

import (
	"testing"
)

func TestParseRanges(t *testing.T) {
	set, err := Parse("1-3,6,8,10-12")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for n := 1; n <= 13; n++ {
		want := n <= 3 || n == 6 || n == 8 || (n >= 10 && n <= 12)
		if got := set.Contains(n); got != want {
			t.Fatalf("Contains(%d) = %v, want %v", n, got, want)
		}
	}
	if set.String() != "1-3,6,8,10-12" {
		t.Fatalf("unexpected String: %q", set.String())
	}
}

func TestParseMergesOverlapsAndOrder(t *testing.T) {
	set, err := Parse("8, 2-4, 3-6, 7")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.String() != "2-8" {
		t.Fatalf("String = %q, want 2-8", set.String())
	}
}

func TestParseHugeRangeStaysCompact(t *testing.T) {
	set, err := Parse("1-999999999,2000000000")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.spans) != 2 {
		t.Fatalf("expected two spans, got %d", len(set.spans))
	}
	if !set.Contains(1) || !set.Contains(999999999) || set.Contains(1000000000) || !set.Contains(2000000000) {
		t.Fatalf("unexpected membership for %s", set)
	}
}

func TestParseBlankSelectsAll(t *testing.T) {
	set, err := Parse("  ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !set.Contains(42) {
		t.Fatal("expected blank selection to contain everything")
	}
	if set.String() != "all" {
		t.Fatalf("unexpected String: %q", set.String())
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"a", "1,,2", "3-1", "0", "-2", "1-", "1-x"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestOf(t *testing.T) {
	set := Of(3, 1)
	if !set.Contains(1) || set.Contains(2) || !set.Contains(3) {
		t.Fatalf("unexpected membership for %s", set)
	}
	if set.String() != "1,3" {
		t.Fatalf("String = %q", set.String())
	}
}
