package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the ordering of a listing.
type SortKey string

const (
	SortByDateTime    SortKey = "datetime"
	SortByDestination SortKey = "destination"
	SortByID          SortKey = "id"
)

// ParseSortKey accepts the names understood by the console.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByDateTime, SortByDestination, SortByID:
		return k, nil
	case "time", "date":
		return SortByDateTime, nil
	case "dest":
		return SortByDestination, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want datetime, destination or id)", s)
	}
}

// Search keeps the entries whose soldiers, destination or ID contain term,
// ignoring case. An empty term matches everything.
func Search(list []SignOut, term string) []SignOut {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}

	var out []SignOut
	for _, s := range list {
		if matches(s, term) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s SignOut, term string) bool {
	if strings.Contains(strings.ToLower(s.Destination), term) ||
		strings.Contains(strings.ToLower(s.ID), term) {
		return true
	}
	for _, name := range s.Soldiers {
		if strings.Contains(strings.ToLower(name), term) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of list. Equal entries keep their relative order
// in both directions.
func Sort(list []SignOut, key SortKey, reverse bool) []SignOut {
	out := slices.Clone(list)

	var compare func(a, b SignOut) int
	switch key {
	case SortByDateTime:
		compare = func(a, b SignOut) int { return a.DateTime.Compare(b.DateTime.Time) }
	case SortByDestination:
		compare = func(a, b SignOut) int {
			return strings.Compare(strings.ToLower(a.Destination), strings.ToLower(b.Destination))
		}
	case SortByID:
		compare = func(a, b SignOut) int { return cmp.Compare(IDNumber(a.ID), IDNumber(b.ID)) }
	default:
		return out
	}

	if reverse {
		slices.SortStableFunc(out, func(a, b SignOut) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// Statistics summarises the current ledger.
type Statistics struct {
	TotalEntries  int
	TotalSoldiers int
	// Destinations counts soldiers (not entries) per destination.
	Destinations map[string]int
}

// DestinationCount is one row of Statistics.ByDestination.
type DestinationCount struct {
	Destination string
	Soldiers    int
}

// ComputeStatistics counts entries, soldiers and soldiers per destination.
func ComputeStatistics(list []SignOut) Statistics {
	st := Statistics{Destinations: make(map[string]int)}
	for _, s := range list {
		st.TotalEntries++
		st.TotalSoldiers += len(s.Soldiers)
		st.Destinations[s.Destination] += len(s.Soldiers)
	}
	return st
}

// ByDestination returns the destination counts, largest first, ties by name.
func (st Statistics) ByDestination() []DestinationCount {
	out := make([]DestinationCount, 0, len(st.Destinations))
	for d, n := range st.Destinations {
		out = append(out, DestinationCount{Destination: d, Soldiers: n})
	}
	slices.SortFunc(out, func(a, b DestinationCount) int {
		if c := cmp.Compare(b.Soldiers, a.Soldiers); c != 0 {
			return c
		}
		return strings.Compare(a.Destination, b.Destination)
	})
	return out
}
