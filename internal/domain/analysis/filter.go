package analysis

import (
	"sort"
	"strings"
)

// FilterAll is the meta value meaning "no type filtering".
const FilterAll = "All"

// Tab is the triage tab driving the first filter stage.
type Tab string

const (
	TabToReview    Tab = "to-review"
	TabNegotiating Tab = "negotiating"
	TabAccepted    Tab = "accepted"
	TabDismissed   Tab = "dismissed"
)

var Tabs = []Tab{TabToReview, TabNegotiating, TabAccepted, TabDismissed}

// Category priority for sorting; unknown types sort first.
var riskTypePriority = map[RiskType]int{
	TypePotentialRisk: 1,
	TypeConflict:      2,
	TypeMissingInfo:   3,
	TypeNearConflict:  4,
	TypeAmbiguity:     5,
}

const unknownTypePriority = 0

func TypePriority(t RiskType) int {
	if p, ok := riskTypePriority[t]; ok {
		return p
	}
	return unknownTypePriority
}

// Query holds the display filters for one request.
type Query struct {
	Tab    Tab
	Types  []string
	Search string
}

// Filter runs the display pipeline: tab filter, type filter, search
// filter, then sort by category priority and title. Pure function of its
// inputs; items are never mutated.
func Filter(items []Item, q Query, statuses StatusMap) []Item {
	filtered := make([]Item, 0, len(items))

	for _, it := range items {
		status, recorded := statuses[it.ID]
		switch q.Tab {
		case TabToReview, "":
			if recorded {
				continue
			}
		default:
			if !recorded || status != Status(q.Tab) {
				continue
			}
		}
		filtered = append(filtered, it)
	}

	if types := explicitTypes(q.Types); len(types) > 0 {
		kept := filtered[:0]
		for _, it := range filtered {
			if types[string(it.Type)] {
				kept = append(kept, it)
			}
		}
		filtered = kept
	}

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		kept := filtered[:0]
		for _, it := range filtered {
			if matchesSearch(it, term) {
				kept = append(kept, it)
			}
		}
		filtered = kept
	}

	SortItems(filtered)
	return filtered
}

// explicitTypes returns the selected type set, or nil when the All marker
// is present (or nothing is selected).
func explicitTypes(selected []string) map[string]bool {
	set := make(map[string]bool, len(selected))
	for _, t := range selected {
		if t == FilterAll {
			return nil
		}
		set[t] = true
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func matchesSearch(it Item, term string) bool {
	fields := []string{
		it.Title,
		it.Summary,
		it.Resolution.Action,
		it.Resolution.SuggestedRedraft,
	}
	for _, e := range it.Evidence {
		fields = append(fields, e.Body)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// SortItems orders by category priority, then title case-insensitive.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := TypePriority(items[i].Type), TypePriority(items[j].Type)
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
	})
}

// TabCounts computes the per-tab badge counts over the full item set,
// ignoring type and search filters so the badges always reflect the
// triage distribution.
func TabCounts(items []Item, statuses StatusMap) map[Tab]int {
	counts := map[Tab]int{
		TabToReview:    0,
		TabNegotiating: 0,
		TabAccepted:    0,
		TabDismissed:   0,
	}
	for _, it := range items {
		status, recorded := statuses[it.ID]
		if !recorded {
			counts[TabToReview]++
			continue
		}
		// Unknown stored statuses fall back to the review tab instead of
		// surfacing as a spurious badge.
		tab := Tab(status)
		if _, known := counts[tab]; !known {
			tab = TabToReview
		}
		counts[tab]++
	}
	return counts
}

// AvailableTypes lists the distinct categories present, sorted by the
// same priority used for item sorting.
func AvailableTypes(items []Item) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		t := string(it.Type)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := TypePriority(RiskType(out[i])), TypePriority(RiskType(out[j]))
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// ToggleType flips one type in the selected set. Selecting the All marker
// resets to All. The All state stands for every available type, so toggling
// a type while All is active deselects just that type and keeps the rest;
// deselecting down to nothing, or selecting every individual type,
// collapses back to All. An empty selection also means All.
func ToggleType(selected []string, t string, available []string) []string {
	if t == FilterAll {
		return []string{FilterAll}
	}

	set := map[string]bool{}
	hasAll := len(selected) == 0
	for _, s := range selected {
		if s == FilterAll {
			hasAll = true
			continue
		}
		set[s] = true
	}
	if hasAll {
		for _, a := range available {
			set[a] = true
		}
	}
	if set[t] {
		delete(set, t)
	} else {
		set[t] = true
	}

	if len(set) == 0 {
		return []string{FilterAll}
	}
	all := len(available) > 0
	for _, a := range available {
		if !set[a] {
			all = false
			break
		}
	}
	if all && len(set) == len(available) {
		return []string{FilterAll}
	}

	out := make([]string, 0, len(set))
	for _, a := range available {
		if set[a] {
			out = append(out, a)
		}
	}
	return out
}
