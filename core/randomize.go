package core

import (
	"math/rand/v2"

	"pkt.systems/ahalaj/internal/colour"
	"pkt.systems/ahalaj/internal/shuffle"
	"pkt.systems/ahalaj/schema"
)

// MinRandomizeItems is the number of non-blank items a list needs before it
// can be randomised.
const MinRandomizeItems = 2

// Randomize shuffles the non-blank items of a list and stores the order,
// pick count and a fresh colour. A list with fewer than two items, or fewer
// than two non-blank items, gets a new item instead and keeps its results.
// A nil source uses the global generator.
func Randomize(tab schema.Tab, r *rand.Rand) (schema.Tab, schema.RandomizeOutcome) {
	ids := make([]schema.ItemID, 0, len(tab.Items))
	for _, item := range tab.Items {
		if !item.Blank() {
			ids = append(ids, item.ID)
		}
	}
	if len(tab.Items) < MinRandomizeItems || len(ids) < MinRandomizeItems {
		out, _ := AddItem(tab)
		return out, schema.OutcomeItemAdded
	}
	pick := tab.TargetPickCount
	if len(tab.Items) == 2 && pick == 2 {
		// Two entries default to a single winner rather than an ordering.
		pick = 1
	}
	out := tab.Clone()
	out.Results = shuffle.Values(shuffle.Sequence(r, ids))
	out.TargetPickCount = pick
	out.ResultsColour = colour.Random(r)
	return out, schema.OutcomeRandomized
}
