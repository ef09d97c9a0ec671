package tradelog

import (
	"fmt"
	"strings"
)

var timespanUnits = []struct {
	name    string
	seconds int64
}{
	{"year", 31557600}, // 365.25 days
	{"month", 2629800}, // a twelfth of a year
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
	{"second", 1},
}

// Timespan formats a duration in seconds with at most n units, largest
// first, e.g. "1 hour, 30 minutes". Zero units are skipped.
func Timespan(seconds int64, n int) string {
	if seconds < 0 {
		seconds = -seconds
	}
	var parts []string
	for _, u := range timespanUnits {
		if len(parts) == n {
			break
		}
		q := seconds / u.seconds
		seconds %= u.seconds
		if q == 0 {
			continue
		}
		unit := u.name
		if q > 1 {
			unit += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", q, unit))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}
