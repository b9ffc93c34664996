package infer

import "strings"

var timeUnits = map[string]struct{}{
	"s": {}, "sec": {}, "secs": {}, "second": {}, "seconds": {},
	"ms": {}, "millisecond": {}, "milliseconds": {},
	"min": {}, "mins": {}, "minute": {}, "minutes": {},
	"h": {}, "hr": {}, "hrs": {}, "hour": {}, "hours": {},
	"d": {}, "day": {}, "days": {},
	"week": {}, "weeks": {},
	"yr": {}, "year": {}, "years": {},
	"common_year": {}, "common_years": {},
}

// IsTimeUnit reports whether a unit string denotes a duration or a timestamp,
// for example "s", "hours", or "days since 1970-01-01".
func IsTimeUnit(unit string) bool {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return false
	}
	if base, _, ok := strings.Cut(u, " since "); ok {
		u = strings.TrimSpace(base)
	}
	_, ok := timeUnits[u]
	return ok
}
