// Package history manipulates the increment ledger: the append-mostly
// sequence of timestamped counter increments a project keeps for its
// completion estimate. No ordering is assumed on storage; consumers
// sort by timestamp before use.
package history

import (
	"sort"

	"github.com/htran/stitchcount/internal/model"
)

// Sorted returns a copy of entries sorted by timestamp ascending.
func Sorted(entries []model.HistoryEntry) []model.HistoryEntry {
	out := append([]model.HistoryEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ForCounter returns the entries for counterID sorted by timestamp
// ascending.
func ForCounter(entries []model.HistoryEntry, counterID string) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range entries {
		if e.CounterID == counterID {
			out = append(out, e)
		}
	}
	return Sorted(out)
}

// RemoveLastFor removes the most recent entry for counterID and
// reports whether one was removed. Entries for other counters are
// never touched. This is the decrement-as-undo pruning: it retracts
// one estimate sample, not a general undo.
func RemoveLastFor(entries []model.HistoryEntry, counterID string) ([]model.HistoryEntry, bool) {
	last := -1
	for i, e := range entries {
		if e.CounterID != counterID {
			continue
		}
		if last == -1 || !e.Timestamp.Before(entries[last].Timestamp) {
			last = i
		}
	}
	if last == -1 {
		return entries, false
	}
	return append(entries[:last:last], entries[last+1:]...), true
}

// PurgeFor removes every entry for counterID. Used when a counter is
// reset or deleted so the estimate never reflects stale history.
func PurgeFor(entries []model.HistoryEntry, counterID string) []model.HistoryEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.CounterID != counterID {
			out = append(out, e)
		}
	}
	return out
}
