package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []Item {
	return []Item{
		{ID: "amb", Title: "Zeta ambiguity", Type: TypeAmbiguity, Summary: "wording is vague"},
		{ID: "con", Title: "Alpha conflict", Type: TypeConflict, Summary: "clauses contradict"},
		{ID: "risk1", Title: "Bravo risk", Type: TypePotentialRisk, Summary: "exposure on demurrage"},
		{ID: "risk2", Title: "alpha risk", Type: TypePotentialRisk, Summary: "laytime exposure",
			Resolution: Resolution{SuggestedRedraft: "Owners shall provide notice"}},
		{ID: "miss", Title: "Missing freight rate", Type: TypeMissingInfo, Summary: "no rate stated"},
	}
}

func TestFilterTabStage(t *testing.T) {
	t.Parallel()

	items := testItems()
	statuses := StatusMap{"con": StatusAccepted, "amb": StatusDismissed}

	// Default tab shows only unmarked items.
	got := Filter(items, Query{}, statuses)
	ids := itemIDs(got)
	assert.ElementsMatch(t, []string{"risk1", "risk2", "miss"}, ids)

	// A status tab shows exactly the items with that status.
	got = Filter(items, Query{Tab: TabAccepted}, statuses)
	require.Len(t, got, 1)
	assert.Equal(t, "con", got[0].ID)

	got = Filter(items, Query{Tab: TabDismissed}, statuses)
	require.Len(t, got, 1)
	assert.Equal(t, "amb", got[0].ID)

	got = Filter(items, Query{Tab: TabNegotiating}, statuses)
	assert.Empty(t, got)
}

func TestFilterTypeStage(t *testing.T) {
	t.Parallel()

	items := testItems()

	// The All marker disables type filtering.
	got := Filter(items, Query{Types: []string{FilterAll}}, nil)
	assert.Len(t, got, len(items))

	got = Filter(items, Query{Types: []string{string(TypePotentialRisk)}}, nil)
	assert.ElementsMatch(t, []string{"risk1", "risk2"}, itemIDs(got))

	got = Filter(items, Query{Types: []string{string(TypeConflict), string(TypeMissingInfo)}}, nil)
	assert.ElementsMatch(t, []string{"con", "miss"}, itemIDs(got))
}

func TestFilterSearchStage(t *testing.T) {
	t.Parallel()

	items := testItems()

	// Search is case-insensitive and spans title, summary and redraft.
	got := Filter(items, Query{Search: "DEMURRAGE"}, nil)
	assert.Equal(t, []string{"risk1"}, itemIDs(got))

	got = Filter(items, Query{Search: "owners shall"}, nil)
	assert.Equal(t, []string{"risk2"}, itemIDs(got))

	got = Filter(items, Query{Search: "no such text"}, nil)
	assert.Empty(t, got)
}

func TestSortItemsPriorityThenTitle(t *testing.T) {
	t.Parallel()

	items := testItems()
	SortItems(items)

	// Potential Risk < Conflict < Missing Info < Ambiguity; ties break on
	// lowercase title.
	assert.Equal(t, []string{"risk2", "risk1", "con", "miss", "amb"}, itemIDs(items))
}

func TestSortItemsUnknownTypeFirst(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "known", Title: "a", Type: TypePotentialRisk},
		{ID: "unknown", Title: "b", Type: RiskType("Exotic")},
	}
	SortItems(items)
	assert.Equal(t, "unknown", items[0].ID)
}

func TestTabCountsSumToTotal(t *testing.T) {
	t.Parallel()

	items := testItems()
	statuses := StatusMap{"con": StatusAccepted, "amb": StatusDismissed, "miss": StatusNegotiating}

	counts := TabCounts(items, statuses)
	total := 0
	for _, tab := range Tabs {
		total += counts[tab]
	}
	assert.Equal(t, len(items), total)
	assert.Equal(t, 2, counts[TabToReview])
	assert.Equal(t, 1, counts[TabAccepted])
	assert.Equal(t, 1, counts[TabDismissed])
	assert.Equal(t, 1, counts[TabNegotiating])
}

func TestTabCountsUnknownStatusCountsAsReview(t *testing.T) {
	t.Parallel()

	items := testItems()
	statuses := StatusMap{"con": Status("escalated"), "amb": StatusDismissed}

	counts := TabCounts(items, statuses)
	require.Len(t, counts, len(Tabs))
	assert.Equal(t, 4, counts[TabToReview])
	assert.Equal(t, 1, counts[TabDismissed])
}

func TestAvailableTypes(t *testing.T) {
	t.Parallel()

	got := AvailableTypes(testItems())
	assert.Equal(t, []string{
		string(TypePotentialRisk),
		string(TypeConflict),
		string(TypeMissingInfo),
		string(TypeAmbiguity),
	}, got)
}

func TestToggleType(t *testing.T) {
	t.Parallel()

	available := []string{"Potential Risk", "Conflict", "Ambiguity"}

	// Selecting All resets to All.
	assert.Equal(t, []string{FilterAll}, ToggleType([]string{"Conflict"}, FilterAll, available))

	// All stands for every available type, so toggling one while All is
	// active deselects it and keeps the rest.
	assert.Equal(t, []string{"Potential Risk", "Ambiguity"}, ToggleType([]string{FilterAll}, "Conflict", available))

	// An empty selection behaves like All.
	assert.Equal(t, []string{"Potential Risk", "Ambiguity"}, ToggleType(nil, "Conflict", available))

	// Toggling a type on from a partial selection adds it.
	assert.Equal(t, []string{"Potential Risk", "Conflict"}, ToggleType([]string{"Potential Risk"}, "Conflict", available))

	// Toggling the only selected type off collapses back to All.
	assert.Equal(t, []string{FilterAll}, ToggleType([]string{"Conflict"}, "Conflict", available))

	// Selecting every individual type collapses to All.
	got := ToggleType([]string{"Potential Risk", "Conflict"}, "Ambiguity", available)
	assert.Equal(t, []string{FilterAll}, got)
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
