package model

import "github.com/iliyamo/guest-suite-booking/internal/calendar"

// Booking occupies the guest suite for the nights [Start, End) on behalf of
// one member.  MemberID is the join key; MemberName is a display copy taken
// at booking time and is never used to authorise anything.
//
// Fields:
//  ID         – opaque unique identifier.
//  MemberID   – 3-digit member identifier.
//  MemberName – member display name at booking time.
//  Start      – first night (check-in date).
//  End        – checkout date, exclusive.
//  Note       – free text annotation (e.g. holiday approval status).
type Booking struct {
	ID         string        `json:"id"`
	MemberID   string        `json:"memberId"`
	MemberName string        `json:"memberName"`
	Start      calendar.Date `json:"start"`
	End        calendar.Date `json:"end"`
	Note       string        `json:"note,omitempty"`
}

// Range returns the booking's half-open night interval.
func (b Booking) Range() calendar.Range {
	return calendar.Range{Start: b.Start, End: b.End}
}

// Nights returns the booked nights in order.
func (b Booking) Nights() []calendar.Date {
	return calendar.NightsInRange(b.Start, b.End)
}

// NightCount returns the number of booked nights.
func (b Booking) NightCount() int {
	return calendar.CountNights(b.Start, b.End)
}

// CloneBookings returns a shallow copy of the slice so callers can append
// without aliasing a snapshot.
func CloneBookings(in []Booking) []Booking {
	out := make([]Booking, len(in))
	copy(out, in)
	return out
}
