package model

import "github.com/iliyamo/guest-suite-booking/internal/calendar"

// SpecialTypeHoliday is the only special period type with gating rules.
const SpecialTypeHoliday = "holiday"

// SpecialPeriod is a labelled holiday window [Start, End).  Requests that
// touch it are gated by an open date and a decision date derived from Start.
type SpecialPeriod struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Label string        `json:"label"`
	Start calendar.Date `json:"start"`
	End   calendar.Date `json:"end"`
}

// Range returns the window's half-open interval.
func (s SpecialPeriod) Range() calendar.Range {
	return calendar.Range{Start: s.Start, End: s.End}
}

// OpenDate is the earliest date a request touching the window may be submitted.
func (s SpecialPeriod) OpenDate(openDays int) calendar.Date {
	return s.Start.AddDays(-openDays)
}

// DecisionDate is the date by which a submitted request gets a final answer.
func (s SpecialPeriod) DecisionDate(decisionDays int) calendar.Date {
	return s.Start.AddDays(-decisionDays)
}
