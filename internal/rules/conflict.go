package rules

import (
	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// Availability classifies a requested range against the booking set.
type Availability string

const (
	AvailabilityFree    Availability = "free"
	AvailabilityFull    Availability = "full"
	AvailabilityPartial Availability = "partial"
)

// ConflictReport partitions the requested nights into occupied and free.
type ConflictReport struct {
	Conflicts []model.Booking
	Occupied  []calendar.Date
	Free      []calendar.Date
	Status    Availability
}

// FreeSegments merges the free nights into contiguous offerable blocks.
func (r ConflictReport) FreeSegments() []calendar.Range {
	return calendar.MergeToBlocks(r.Free)
}

// DetectConflicts returns the bookings overlapping req and splits its nights
// by occupancy.  An empty request reports as free with no nights.
func DetectConflicts(req calendar.Range, bookings []model.Booking) ConflictReport {
	var rep ConflictReport
	occupied := make(calendar.DateSet)
	for _, b := range bookings {
		if !calendar.Overlaps(req.Start, req.End, b.Start, b.End) {
			continue
		}
		rep.Conflicts = append(rep.Conflicts, b)
		occupied.AddRange(b.Range())
	}
	for _, n := range calendar.NightsInRange(req.Start, req.End) {
		if occupied.Has(n) {
			rep.Occupied = append(rep.Occupied, n)
		} else {
			rep.Free = append(rep.Free, n)
		}
	}
	switch {
	case len(rep.Occupied) == 0:
		rep.Status = AvailabilityFree
	case len(rep.Free) == 0:
		rep.Status = AvailabilityFull
	default:
		rep.Status = AvailabilityPartial
	}
	return rep
}

// OccupiedNights collects every night held by any booking.
func OccupiedNights(bookings []model.Booking) calendar.DateSet {
	set := make(calendar.DateSet)
	for _, b := range bookings {
		set.AddRange(b.Range())
	}
	return set
}
