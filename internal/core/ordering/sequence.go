package ordering

import (
	"cmp"
	"slices"

	"github.com/vietddude/linkpay/internal/core/domain"
)

// SortByPosition returns a copy of items stably sorted by ascending position.
func SortByPosition(items []domain.OrderedItem) []domain.OrderedItem {
	result := slices.Clone(items)
	sortStable(result)
	return result
}

// IsCanonical reports whether the positions of items are a permutation of 0..N-1.
func IsCanonical(items []domain.OrderedItem) bool {
	seen := make([]bool, len(items))
	for _, item := range items {
		if item.Position < 0 || item.Position >= len(items) || seen[item.Position] {
			return false
		}
		seen[item.Position] = true
	}
	return true
}

// Repair returns items renumbered to 0..N-1 in ascending position order,
// ties keeping their original order. Canonical input is returned as is.
func Repair(items []domain.OrderedItem) []domain.OrderedItem {
	if IsCanonical(items) {
		return items
	}
	return reindex(SortByPosition(items))
}

// NextAppendPosition returns a position past every existing one.
func NextAppendPosition(items []domain.OrderedItem) int {
	if len(items) == 0 {
		return 0
	}
	maxPos := items[0].Position
	for _, item := range items[1:] {
		maxPos = max(maxPos, item.Position)
	}
	return maxPos + 1
}

func sortStable(items []domain.OrderedItem) {
	slices.SortStableFunc(items, func(a, b domain.OrderedItem) int {
		return cmp.Compare(a.Position, b.Position)
	})
}
