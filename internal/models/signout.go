// Package models defines the sign-out ledger types and the pure functions
// that operate on them: validation, phone formatting, search, sorting,
// statistics and display helpers.
package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/signout/internal/timex"
)

// SignOut is one group of soldiers currently signed out of the facility.
type SignOut struct {
	ID           string         `json:"id"`
	Soldiers     []string       `json:"soldiers"`
	Destination  string         `json:"destination"`
	Phone        string         `json:"phone"`
	Categories   []string       `json:"categories"`
	DateTime     timex.ISOTime  `json:"datetime"`
	Notes        string         `json:"notes"`
	DS           string         `json:"ds"`
	CreatedAt    timex.ISOTime  `json:"created_at"`
	LastModified *timex.ISOTime `json:"last_modified,omitempty"`
}

// Clone returns a deep copy.
func (s *SignOut) Clone() *SignOut {
	c := *s
	c.Soldiers = append([]string(nil), s.Soldiers...)
	c.Categories = append([]string(nil), s.Categories...)
	if s.LastModified != nil {
		lm := *s.LastModified
		c.LastModified = &lm
	}
	return &c
}

// Document is the on-disk JSON ledger.
type Document struct {
	LastUpdated timex.ISOTime `json:"last_updated"`
	SignOuts    []SignOut     `json:"signouts"`
}

// idWidth is the minimum number of digits in a ledger ID.
const idWidth = 3

// FormatID renders n as a zero-padded ledger ID ("001").
func FormatID(n int) string {
	return fmt.Sprintf("%0*d", idWidth, n)
}

// IDNumber returns the numeric value of id, or 0 when id is not a number.
func IDNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0
	}
	return n
}

// NextID returns max(existing IDs)+1, zero-padded. Gaps left by removed
// entries are never reused below the current maximum.
func NextID(existing []SignOut) string {
	highest := 0
	for _, s := range existing {
		if n := IDNumber(s.ID); n > highest {
			highest = n
		}
	}
	return FormatID(highest + 1)
}
