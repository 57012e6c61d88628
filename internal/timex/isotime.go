package timex

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the layout written for ISOTime: local wall-clock time without a
// zone suffix and with microsecond precision when the fraction is non-zero.
const ISOLayout = "2006-01-02T15:04:05.999999"

var isoParseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ISOTime is a time stamp stored the way the ledger document stores it,
// e.g. "2025-06-25T08:00:00" or "2025-06-25T08:00:00.123456".
type ISOTime struct {
	time.Time
}

// NewISOTime wraps t.
func NewISOTime(t time.Time) ISOTime {
	return ISOTime{Time: t}
}

// ParseISOTime parses the formats found in ledger documents. Values with a
// zone ("Z" or an offset) are converted to local time; values without one are
// interpreted as local time.
func ParseISOTime(s string) (ISOTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoParseLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
			if err == nil {
				t = t.Local()
			}
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return ISOTime{Time: t}, nil
		}
	}
	return ISOTime{}, fmt.Errorf("unrecognised time %q", s)
}

// String formats the time with ISOLayout; the zero value formats as "".
func (t ISOTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(ISOLayout)
}

// MarshalJSON writes the ISOLayout string.
func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts any layout understood by ParseISOTime; an empty string
// or null yields the zero value.
func (t *ISOTime) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*t = ISOTime{}
		return nil
	}
	parsed, err := ParseISOTime(*s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
