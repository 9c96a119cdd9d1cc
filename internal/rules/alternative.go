package rules

import "github.com/iliyamo/guest-suite-booking/internal/calendar"

// FindAlternative scans forward one day at a time from requested.Start+1 for
// the first window of the same length that is entirely free and has the same
// weekend/midweek character as the request.  A weekend request wants at
// least one Friday or Saturday night; a midweek request wants none.  The
// scan gives up after searchDays offsets.
func FindAlternative(requested calendar.Range, occupied calendar.DateSet, searchDays int) (calendar.Range, bool) {
	n := requested.Nights()
	if n <= 0 {
		return calendar.Range{}, false
	}
	wantWeekend := calendar.HasWeekendNight(calendar.NightsInRange(requested.Start, requested.End))

	for offset := 1; offset <= searchDays; offset++ {
		start := requested.Start.AddDays(offset)
		candidate := calendar.Range{Start: start, End: start.AddDays(n)}
		nights := calendar.NightsInRange(candidate.Start, candidate.End)
		if anyOccupied(nights, occupied) {
			continue
		}
		if calendar.HasWeekendNight(nights) == wantWeekend {
			return candidate, true
		}
	}
	return calendar.Range{}, false
}

func anyOccupied(nights []calendar.Date, occupied calendar.DateSet) bool {
	for _, d := range nights {
		if occupied.Has(d) {
			return true
		}
	}
	return false
}
