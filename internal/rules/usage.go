package rules

import (
	"strings"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// MonthKey is the composite key of the usage table.
type MonthKey struct {
	MemberID string
	Month    string // yyyy-MM
}

// UsageIndex is derived from the full booking set for one decision and then
// thrown away.  Nothing in it is cached between calls.
type UsageIndex struct {
	nights         map[MonthKey]int
	lastPastByID   map[string]calendar.Date
	lastPastByName map[string]calendar.Date
}

// BuildUsage counts nights per (member, month) and records each member's most
// recent night strictly before today, keyed by id and by trimmed name.
func BuildUsage(bookings []model.Booking, today calendar.Date) UsageIndex {
	u := UsageIndex{
		nights:         make(map[MonthKey]int),
		lastPastByID:   make(map[string]calendar.Date),
		lastPastByName: make(map[string]calendar.Date),
	}
	for _, b := range bookings {
		name := strings.TrimSpace(b.MemberName)
		for _, n := range b.Nights() {
			u.nights[MonthKey{MemberID: b.MemberID, Month: calendar.MonthKeyOf(n)}]++
			if !n.Before(today) {
				continue
			}
			if cur, ok := u.lastPastByID[b.MemberID]; !ok || n.After(cur) {
				u.lastPastByID[b.MemberID] = n
			}
			if name == "" {
				continue
			}
			if cur, ok := u.lastPastByName[name]; !ok || n.After(cur) {
				u.lastPastByName[name] = n
			}
		}
	}
	return u
}

// Nights returns the member's booked nights in month (yyyy-MM).
func (u UsageIndex) Nights(memberID, month string) int {
	return u.nights[MonthKey{MemberID: memberID, Month: month}]
}

// ForMonth returns member id -> nights for a single month.
func (u UsageIndex) ForMonth(month string) map[string]int {
	out := make(map[string]int)
	for k, v := range u.nights {
		if k.Month == month {
			out[k.MemberID] = v
		}
	}
	return out
}

// LastPastNight returns the member's most recent past night.  The id lookup
// always runs; the exact-name lookup is a fallback for legacy rows whose id
// was mistyped and only runs when byName is set.  The later of the two wins.
func (u UsageIndex) LastPastNight(memberID, memberName string, byName bool) (calendar.Date, bool) {
	last, ok := u.lastPastByID[memberID]
	if !byName {
		return last, ok
	}
	name := strings.TrimSpace(memberName)
	if name == "" {
		return last, ok
	}
	if n, found := u.lastPastByName[name]; found && (!ok || n.After(last)) {
		return n, true
	}
	return last, ok
}

// MonthlyOverflow adds the requested nights to the member's existing usage
// and returns every month whose total would exceed limit, in calendar order.
func MonthlyOverflow(u UsageIndex, memberID string, nights []calendar.Date, limit int) []string {
	added := make(map[string]int)
	var order []string
	for _, n := range nights {
		m := calendar.MonthKeyOf(n)
		if _, seen := added[m]; !seen {
			order = append(order, m)
		}
		added[m]++
	}
	var over []string
	for _, m := range order {
		if u.Nights(memberID, m)+added[m] > limit {
			over = append(over, m)
		}
	}
	return over
}

// LastVacation returns the latest maximal run of consecutive nights booked by
// the member, past or future.
func LastVacation(bookings []model.Booking, memberID string) (calendar.Range, bool) {
	var nights []calendar.Date
	for _, b := range bookings {
		if b.MemberID == memberID {
			nights = append(nights, b.Nights()...)
		}
	}
	blocks := calendar.MergeToBlocks(nights)
	if len(blocks) == 0 {
		return calendar.Range{}, false
	}
	return blocks[len(blocks)-1], true
}
