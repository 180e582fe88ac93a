package form

import (
	"strings"
	"time"
)

// clockHHMM trims HH:MM:SS to HH:MM; anything shorter is returned unchanged.
func clockHHMM(s string) string {
	if len(s) >= 5 && s[2] == ':' {
		return s[:5]
	}
	return s
}

var naiveLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"}

// splitInstant returns the local date and HH:MM of a backend instant.
// Zoned instants are converted to local time; naive ones are taken as is.
func splitInstant(s string) (date, hhmm string) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(time.Local)
		return t.Format(time.DateOnly), t.Format("15:04")
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), t.Format("15:04")
		}
	}
	if d, rest, ok := strings.Cut(s, "T"); ok {
		return d, clockHHMM(rest)
	}
	return "", ""
}

// combineInstant builds the YYYY-MM-DDTHH:MM:00 instant sent to the backend.
func combineInstant(date, hhmm string) string {
	return date + "T" + hhmm + ":00"
}
