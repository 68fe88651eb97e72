package ordering

import (
	"slices"

	"github.com/vietddude/linkpay/internal/core/domain"
)

// Reorder moves the element at from to index to and renumbers every element
// by its new index. to is clamped into range; an out-of-range from or
// from == to returns items unchanged.
func Reorder(items []domain.OrderedItem, from, to int) []domain.OrderedItem {
	n := len(items)
	if from < 0 || from >= n {
		return items
	}
	to = clamp(to, 0, n-1)
	if from == to {
		return items
	}

	result := make([]domain.OrderedItem, 0, n)
	moved := items[from]
	for i, item := range items {
		if i == from {
			continue
		}
		result = append(result, item)
	}
	result = slices.Insert(result, to, moved)

	return reindex(result)
}

// MoveToPosition moves the item with the given id to newPosition.
// Unknown ids are a no-op.
func MoveToPosition(items []domain.OrderedItem, id string, newPosition int) []domain.OrderedItem {
	idx := indexOf(items, id)
	if idx < 0 {
		return items
	}
	return Reorder(items, idx, newPosition)
}

// InsertAt inserts item at rank position, shifting every item at or after
// that position up by one. position is clamped to [0, len(items)].
func InsertAt(items []domain.OrderedItem, item domain.OrderedItem, position int) []domain.OrderedItem {
	position = clamp(position, 0, len(items))

	result := make([]domain.OrderedItem, 0, len(items)+1)
	for _, existing := range items {
		if existing.Position >= position {
			existing.Position++
		}
		result = append(result, existing)
	}
	item.Position = position
	result = append(result, item)

	sortStable(result)
	return reindex(result)
}

// RemoveAndRepair removes the item with the given id and closes the gap.
// Unknown ids are a no-op.
func RemoveAndRepair(items []domain.OrderedItem, id string) []domain.OrderedItem {
	idx := indexOf(items, id)
	if idx < 0 {
		return items
	}

	result := make([]domain.OrderedItem, 0, len(items)-1)
	result = append(result, items[:idx]...)
	result = append(result, items[idx+1:]...)

	sortStable(result)
	return reindex(result)
}

func indexOf(items []domain.OrderedItem, id string) int {
	return slices.IndexFunc(items, func(item domain.OrderedItem) bool {
		return item.ID == id
	})
}

// reindex assigns position = index in place. Callers pass freshly built slices.
func reindex(items []domain.OrderedItem) []domain.OrderedItem {
	for i := range items {
		items[i].Position = i
	}
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
