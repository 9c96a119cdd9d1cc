package model

import "github.com/iliyamo/guest-suite-booking/internal/calendar"

// CheckRequest is the member-facing input to an availability check.
type CheckRequest struct {
	MemberID   string        `json:"memberId"`
	MemberName string        `json:"memberName"`
	Start      calendar.Date `json:"start"`
	End        calendar.Date `json:"end"`
}

// Range returns the requested half-open interval.
func (r CheckRequest) Range() calendar.Range {
	return calendar.Range{Start: r.Start, End: r.End}
}

// SameAs reports whether two requests are identical field by field.  Commit
// uses it to detect inputs that changed after a check.
func (r CheckRequest) SameAs(o CheckRequest) bool {
	return r.MemberID == o.MemberID &&
		r.MemberName == o.MemberName &&
		r.Start.Equal(o.Start) &&
		r.End.Equal(o.End)
}
