package calendar

import (
	"sort"
	"time"
)

// Range is a half-open interval of nights [Start, End).
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Nights returns the number of nights in r; never negative.
func (r Range) Nights() int { return CountNights(r.Start, r.End) }

// Valid reports whether r contains at least one night.
func (r Range) Valid() bool { return !r.Start.IsZero() && r.Start.Before(r.End) }

// Overlaps reports whether r and o share a night.
func (r Range) Overlaps(o Range) bool { return Overlaps(r.Start, r.End, o.Start, o.End) }

// Contains reports whether night d is inside r.
func (r Range) Contains(d Date) bool { return !d.Before(r.Start) && d.Before(r.End) }

func (r Range) String() string { return r.Start.String() + ".." + r.End.String() }

// NightsInRange lists every night in [start, end) in order; empty when start >= end.
func NightsInRange(start, end Date) []Date {
	if !start.Before(end) {
		return nil
	}
	out := make([]Date, 0, start.DaysUntil(end))
	for d := start; d.Before(end); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// CountNights is len(NightsInRange(start, end)) without the allocation.
func CountNights(start, end Date) int {
	if !start.Before(end) {
		return 0
	}
	return start.DaysUntil(end)
}

// Overlaps is the half-open intersection test: aStart < bEnd && bStart < aEnd.
// Touching endpoints do not overlap; checkout and check-in on the same day
// are compatible.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// MergeToBlocks sorts the given nights, drops duplicates and merges runs of
// consecutive days into maximal half-open ranges.
func MergeToBlocks(dates []Date) []Range {
	if len(dates) == 0 {
		return nil
	}
	sorted := make([]Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var blocks []Range
	blockStart := sorted[0]
	prev := sorted[0]
	for _, d := range sorted[1:] {
		if d.Equal(prev) {
			continue
		}
		if !prev.AddDays(1).Equal(d) {
			blocks = append(blocks, Range{Start: blockStart, End: prev.AddDays(1)})
			blockStart = d
		}
		prev = d
	}
	return append(blocks, Range{Start: blockStart, End: prev.AddDays(1)})
}

// MonthKeyOf maps a night to its yyyy-MM bucket.
func MonthKeyOf(d Date) string { return d.MonthKey() }

// IsWeekendNight reports whether d falls on one of the last two days of the
// week (Friday or Saturday).
func IsWeekendNight(d Date) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// HasWeekendNight reports whether any of the nights is a weekend night.
func HasWeekendNight(nights []Date) bool {
	for _, n := range nights {
		if IsWeekendNight(n) {
			return true
		}
	}
	return false
}

// DateSet is a set of nights keyed by their canonical string.
type DateSet map[string]struct{}

func (s DateSet) Add(d Date) { s[d.String()] = struct{}{} }
func (s DateSet) Has(d Date) bool { _, ok := s[d.String()]; return ok }
func (s DateSet) AddRange(r Range) {
	for _, n := range NightsInRange(r.Start, r.End) {
		s.Add(n)
	}
}
