package rules

import (
	"fmt"
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// ReasonCode distinguishes policy outcomes for callers.
type ReasonCode string

const (
	ReasonHorizonExceeded        ReasonCode = "horizon_exceeded"
	ReasonConsecutiveCapExceeded ReasonCode = "consecutive_cap_exceeded"
	ReasonMonthlyCapExceeded     ReasonCode = "monthly_cap_exceeded"
	ReasonHolidayNotOpen         ReasonCode = "holiday_not_open_yet"
	ReasonHolidayPendingDecision ReasonCode = "holiday_pending_decision"
)

// Limits carries the tunable numbers of the booking policy.
type Limits struct {
	MaxConsecutiveNights int
	MonthlyCap           int
	RecentHorizonWeeks   int
	DefaultHorizonWeeks  int
	RecentUsageMonths    int
	HolidayOpenDays      int
	HolidayDecisionDays  int
	AlternativeSearch    int
	NameFallback         bool
}

// DefaultLimits returns the community's standing rules.
func DefaultLimits() Limits {
	return Limits{
		MaxConsecutiveNights: 5,
		MonthlyCap:           5,
		RecentHorizonWeeks:   6,
		DefaultHorizonWeeks:  8,
		RecentUsageMonths:    6,
		HolidayOpenDays:      60,
		HolidayDecisionDays:  35,
		AlternativeSearch:    120,
		NameFallback:         true,
	}
}

// Snapshot is everything a check may look at.  It is built by the caller
// from freshly loaded records before each decision.
type Snapshot struct {
	Today    calendar.Date
	Bookings []model.Booking
	Specials []model.SpecialPeriod
	Usage    UsageIndex
}

// NewSnapshot derives the usage table from bookings as of today.
func NewSnapshot(today calendar.Date, bookings []model.Booking, specials []model.SpecialPeriod) Snapshot {
	return Snapshot{
		Today:    today,
		Bookings: bookings,
		Specials: specials,
		Usage:    BuildUsage(bookings, today),
	}
}

// Notice is a non-blocking annotation produced by a passing check.
type Notice struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

// Verdict is the outcome of one check.  A zero Code means pass.
type Verdict struct {
	Code    ReasonCode
	Message string
	Months  []string
	Notice  *Notice
}

// Passed reports whether the check allowed the request.
func (v Verdict) Passed() bool { return v.Code == "" }

// Check is a single pure policy rule.
type Check func(req model.CheckRequest, snap Snapshot, lim Limits) Verdict

// Decision is the combined result of a pipeline run.  Failure is nil when
// the request passed every check.
type Decision struct {
	Failure *Verdict
	Notices []Notice
}

// Allowed reports whether no check failed.
func (d Decision) Allowed() bool { return d.Failure == nil }

// Policy runs the checks in a fixed order.
type Policy struct {
	limits Limits
	checks []Check
}

// NewPolicy builds the member-facing pipeline: horizon, consecutive nights,
// monthly cap, holiday gate.
func NewPolicy(lim Limits) *Policy {
	return &Policy{
		limits: lim,
		checks: []Check{CheckHorizon, CheckConsecutive, CheckMonthlyCap, CheckHoliday},
	}
}

func (p *Policy) Limits() Limits { return p.limits }

// Evaluate stops at the first failing check.
func (p *Policy) Evaluate(req model.CheckRequest, snap Snapshot) Decision {
	var d Decision
	for _, check := range p.checks {
		v := check(req, snap, p.limits)
		if !v.Passed() {
			d.Failure = &v
			return d
		}
		if v.Notice != nil {
			d.Notices = append(d.Notices, *v.Notice)
		}
	}
	return d
}

// HorizonFor returns the last allowed start date for the member and whether
// the shorter horizon applied.
func HorizonFor(req model.CheckRequest, snap Snapshot, lim Limits) (calendar.Date, bool) {
	recent := false
	if last, ok := snap.Usage.LastPastNight(req.MemberID, req.MemberName, lim.NameFallback); ok {
		recent = !last.Before(snap.Today.AddMonths(-lim.RecentUsageMonths))
	}
	weeks := lim.DefaultHorizonWeeks
	if recent {
		weeks = lim.RecentHorizonWeeks
	}
	return snap.Today.AddDays(weeks * 7), recent
}

// CheckHorizon rejects starts beyond the member's lookahead window.
func CheckHorizon(req model.CheckRequest, snap Snapshot, lim Limits) Verdict {
	limit, recent := HorizonFor(req, snap, lim)
	if !req.Start.After(limit) {
		return Verdict{}
	}
	msg := fmt.Sprintf("bookings may start up to %d weeks ahead (latest start %s) because you have not used the suite in the last %d months",
		lim.DefaultHorizonWeeks, limit.Display(), lim.RecentUsageMonths)
	if recent {
		msg = fmt.Sprintf("bookings may start up to %d weeks ahead (latest start %s) because you used the suite in the last %d months",
			lim.RecentHorizonWeeks, limit.Display(), lim.RecentUsageMonths)
	}
	return Verdict{Code: ReasonHorizonExceeded, Message: msg}
}

// CheckConsecutive caps the length of a single stay, across month boundaries.
func CheckConsecutive(req model.CheckRequest, _ Snapshot, lim Limits) Verdict {
	if n := req.Range().Nights(); n > lim.MaxConsecutiveNights {
		return Verdict{
			Code:    ReasonConsecutiveCapExceeded,
			Message: fmt.Sprintf("a single stay is limited to %d consecutive nights (requested %d)", lim.MaxConsecutiveNights, n),
		}
	}
	return Verdict{}
}

// CheckMonthlyCap adds the requested nights to the member's existing usage
// and lists every month that would go over the cap.
func CheckMonthlyCap(req model.CheckRequest, snap Snapshot, lim Limits) Verdict {
	nights := calendar.NightsInRange(req.Start, req.End)
	over := MonthlyOverflow(snap.Usage, req.MemberID, nights, lim.MonthlyCap)
	if len(over) == 0 {
		return Verdict{}
	}
	return Verdict{
		Code:    ReasonMonthlyCapExceeded,
		Message: fmt.Sprintf("up to %d nights per member per month; exceeded in %s", lim.MonthlyCap, strings.Join(over, ", ")),
		Months:  over,
	}
}

// CheckHoliday gates requests that touch a special period.  Before the open
// date the request is refused; until the decision date it passes with a
// pending notice.  The first gated window wins.
func CheckHoliday(req model.CheckRequest, snap Snapshot, lim Limits) Verdict {
	r := req.Range()
	for _, sp := range snap.Specials {
		if sp.Type != model.SpecialTypeHoliday || !r.Overlaps(sp.Range()) {
			continue
		}
		open := sp.OpenDate(lim.HolidayOpenDays)
		decision := sp.DecisionDate(lim.HolidayDecisionDays)
		if snap.Today.Before(open) {
			return Verdict{
				Code:    ReasonHolidayNotOpen,
				Message: fmt.Sprintf("requests for %s open on %s", holidayLabel(sp), open.Display()),
			}
		}
		if snap.Today.Before(decision) {
			return Verdict{Notice: &Notice{
				Code:    ReasonHolidayPendingDecision,
				Message: fmt.Sprintf("request for %s recorded; final answer by %s", holidayLabel(sp), decision.Display()),
			}}
		}
	}
	return Verdict{}
}

func holidayLabel(sp model.SpecialPeriod) string {
	if l := strings.TrimSpace(sp.Label); l != "" {
		return l
	}
	return "the holiday period"
}
