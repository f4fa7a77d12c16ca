package core

import (
	"math/rand/v2"
	"slices"
	"testing"

	"pkt.systems/ahalaj/internal/colour"
	"pkt.systems/ahalaj/schema"
)

func TestRandomizeExcludesBlankItems(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	tab := tabWithItems("a", "X", "Y", "")
	for range 50 {
		out, outcome := Randomize(tab, r)
		if outcome != schema.OutcomeRandomized {
			t.Fatalf("expected randomized, got %s", outcome)
		}
		got := slices.Clone(out.Results)
		slices.Sort(got)
		if !slices.Equal(got, []schema.ItemID{1, 2}) {
			t.Fatalf("expected permutation of [1 2], got %v", out.Results)
		}
		if out.TargetPickCount != 2 {
			t.Fatalf("expected pick count to stay 2, got %d", out.TargetPickCount)
		}
		if _, ok := colour.Hue(out.ResultsColour); !ok {
			t.Fatalf("unexpected colour %q", out.ResultsColour)
		}
	}
}

func TestRandomizeIsPermutationOfNonBlank(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	tab := tabWithItems("a", "a", " ", "b", "c", "\t", "d")
	out, _ := Randomize(tab, r)
	got := slices.Clone(out.Results)
	slices.Sort(got)
	if !slices.Equal(got, []schema.ItemID{1, 3, 4, 6}) {
		t.Fatalf("expected non-blank ids only, got %v", out.Results)
	}
}

func TestRandomizeTooFewItemsAddsItem(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	cases := map[string]schema.Tab{
		"single":        tabWithItems("a", "only"),
		"one-non-blank": tabWithItems("a", "X", ""),
		"all-blank":     tabWithItems("a", "", "", ""),
	}
	for name, tab := range cases {
		tab.Results = []schema.ItemID{9}
		out, outcome := Randomize(tab, r)
		if outcome != schema.OutcomeItemAdded {
			t.Fatalf("%s: expected item added, got %s", name, outcome)
		}
		if len(out.Items) != len(tab.Items)+1 {
			t.Fatalf("%s: expected one more item, got %d", name, len(out.Items))
		}
		if !slices.Equal(out.Results, tab.Results) {
			t.Fatalf("%s: results changed to %v", name, out.Results)
		}
	}
}

func TestRandomizeTwoItemsPicksOne(t *testing.T) {
	out, _ := Randomize(tabWithItems("a", "heads", "tails"), rand.New(rand.NewPCG(7, 8)))
	if out.TargetPickCount != 1 {
		t.Fatalf("expected pick count coerced to 1, got %d", out.TargetPickCount)
	}
	tab := tabWithItems("a", "heads", "tails")
	tab.TargetPickCount = 3
	out, _ = Randomize(tab, nil)
	if out.TargetPickCount != 3 {
		t.Fatalf("expected explicit pick count kept, got %d", out.TargetPickCount)
	}
}

func TestRandomizeOnlyTouchesOneTab(t *testing.T) {
	c := schema.Collection{tabWithItems("a", "x", "y", "z"), tabWithItems("b", "p", "q")}
	c[1].Results = []schema.ItemID{2, 1}
	c[1].ResultsColour = colour.FromHue(10)
	out, _ := Randomize(c[0], nil)
	next := ReplaceTab(c, out)
	if !slices.Equal(next[1].Results, []schema.ItemID{2, 1}) || next[1].ResultsColour != colour.FromHue(10) {
		t.Fatalf("other list changed: %+v", next[1])
	}
}

func TestRandomizeUniformOrderings(t *testing.T) {
	// 6 orderings of 3 items; df=5, 0.999 quantile about 20.5.
	r := rand.New(rand.NewPCG(2024, 10))
	tab := tabWithItems("a", "x", "y", "z")
	const trials = 30000
	counts := make(map[[3]schema.ItemID]int)
	for range trials {
		out, _ := Randomize(tab, r)
		counts[[3]schema.ItemID(out.Results)]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected 6 orderings, got %d", len(counts))
	}
	expected := float64(trials) / 6
	var chi2 float64
	for _, observed := range counts {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	if chi2 > 20.5 {
		t.Fatalf("orderings look biased: chi2=%.2f %v", chi2, counts)
	}
}

func TestRandomizeUniformHues(t *testing.T) {
	// 12 buckets of 30 degrees; df=11, 0.999 quantile about 31.3.
	r := rand.New(rand.NewPCG(99, 100))
	tab := tabWithItems("a", "x", "y")
	const trials = 24000
	var buckets [12]int
	for range trials {
		out, _ := Randomize(tab, r)
		hue, ok := colour.Hue(out.ResultsColour)
		if !ok {
			t.Fatalf("unexpected colour %q", out.ResultsColour)
		}
		buckets[hue/30]++
	}
	expected := float64(trials) / 12
	var chi2 float64
	for _, observed := range buckets {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	if chi2 > 31.3 {
		t.Fatalf("hues look biased: chi2=%.2f %v", chi2, buckets)
	}
}
