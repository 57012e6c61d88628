package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/signout/internal/timex"
)

// DisplayTimeLayout is how sign-out times are shown to the operator.
const DisplayTimeLayout = "2006-01-02 15:04"

// FormatSoldiers joins up to limit names and summarises the rest.
func FormatSoldiers(soldiers []string, limit int) string {
	if len(soldiers) == 0 {
		return "No soldiers"
	}
	if limit <= 0 || len(soldiers) <= limit {
		return strings.Join(soldiers, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(soldiers[:limit], ", "), len(soldiers)-limit)
}

// FormatDuration renders the time elapsed since start as "3h 5m" or "42m".
// A zero start yields "Unknown".
func FormatDuration(start timex.ISOTime, now time.Time) string {
	if start.IsZero() {
		return "Unknown"
	}
	d := now.Sub(start.Time)
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	hours, minutes := total/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatTime renders t with DisplayTimeLayout, or "-" for the zero value.
func FormatTime(t timex.ISOTime) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DisplayTimeLayout)
}
