package ledger

import (
	"strings"
	"time"
)

// ReferenceZone is the fixed offset every stored bet time is expressed in.
var ReferenceZone = time.FixedZone("GMT-4", -4*60*60)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseProviderTime parses the timestamp formats the providers send. Values
// without an explicit offset are read in ReferenceZone.
func ParseProviderTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, s, ReferenceZone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeBetTime re-expresses t in loc (ReferenceZone when nil), regardless
// of the offset the payload carried. A zero time becomes now.
func NormalizeBetTime(t time.Time, loc *time.Location, now func() time.Time) time.Time {
	if loc == nil {
		loc = ReferenceZone
	}
	if t.IsZero() {
		if now == nil {
			now = time.Now
		}
		t = now()
	}
	return t.In(loc)
}
