package shuffle

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

func TestSequenceIsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	input := []string{"a", "b", "c", "d", "e"}
	before := slices.Clone(input)
	for range 100 {
		seq := Sequence(r, input)
		if len(seq) != len(input) {
			t.Fatalf("expected %d entries, got %d", len(input), len(seq))
		}
		seen := make(map[int]bool)
		for _, entry := range seq {
			if seen[entry.Index] {
				t.Fatalf("duplicate index %d", entry.Index)
			}
			seen[entry.Index] = true
			if input[entry.Index] != entry.Value {
				t.Fatalf("index %d carries %q, want %q", entry.Index, entry.Value, input[entry.Index])
			}
		}
	}
	if !slices.Equal(before, input) {
		t.Fatalf("input was modified: %v", input)
	}
}

func TestSequenceEmptyAndSingle(t *testing.T) {
	if got := Sequence[int](nil, nil); len(got) != 0 {
		t.Fatalf("expected empty permutation, got %v", got)
	}
	got := Sequence(nil, []int{7})
	if len(got) != 1 || got[0].Value != 7 || got[0].Index != 0 {
		t.Fatalf("unexpected single permutation: %v", got)
	}
}

func TestSequenceUniform(t *testing.T) {
	// Chi-square over the 6 orderings of 3 values. With 5 degrees of freedom
	// the 0.999 quantile is about 20.5.
	r := rand.New(rand.NewPCG(42, 1337))
	const trials = 60000
	counts := make(map[string]int)
	for range trials {
		seq := Values(Sequence(r, []string{"a", "b", "c"}))
		counts[strings.Join(seq, "")]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected 6 orderings, got %d: %v", len(counts), counts)
	}
	expected := float64(trials) / 6
	var chi2 float64
	for _, observed := range counts {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	if chi2 > 20.5 {
		t.Fatalf("permutations look biased: chi2=%.2f counts=%v", chi2, counts)
	}
}
