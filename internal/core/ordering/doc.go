// Package ordering keeps reorderable collections in canonical form.
//
// A collection is canonical when its positions are exactly 0..N-1. The list
// primitives (Reorder, MoveToPosition, InsertAt, RemoveAndRepair) are pure:
// they never modify the slice they are given and always return a canonical
// result. ApplyReorder and Debouncer layer an optimistic update with rollback
// on top of a caller supplied Persister.
package ordering
