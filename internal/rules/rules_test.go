package rules

import (
	"testing"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func booking(id, member, name, start, end string) model.Booking {
	return model.Booking{ID: id, MemberID: member, MemberName: name, Start: d(start), End: d(end)}
}

func request(member, name, start, end string) model.CheckRequest {
	return model.CheckRequest{MemberID: member, MemberName: name, Start: d(start), End: d(end)}
}

func TestBuildUsage_CountsPerMemberMonth(t *testing.T) {
	bookings := []model.Booking{
		booking("a", "123", "Noa", "2025-09-29", "2025-10-02"),
		booking("b", "123", "Noa", "2025-10-10", "2025-10-12"),
		booking("c", "234", "Avi", "2025-10-01", "2025-10-02"),
	}
	u := BuildUsage(bookings, d("2025-10-11"))
	if got := u.Nights("123", "2025-09"); got != 2 {
		t.Fatalf("expected 2 september nights, got %d", got)
	}
	if got := u.Nights("123", "2025-10"); got != 3 {
		t.Fatalf("expected 3 october nights, got %d", got)
	}
	last, ok := u.LastPastNight("123", "", false)
	if !ok || last.String() != "2025-10-10" {
		t.Fatalf("expected last past night 2025-10-10, got %s (ok=%v)", last, ok)
	}
	oct := u.ForMonth("2025-10")
	if oct["123"] != 3 || oct["234"] != 1 {
		t.Fatalf("unexpected month table %v", oct)
	}
}

func TestLastPastNight_NameFallback(t *testing.T) {
	bookings := []model.Booking{booking("a", "999", "Dana Levi", "2025-07-22", "2025-07-23")}
	u := BuildUsage(bookings, d("2025-08-01"))
	if _, ok := u.LastPastNight("123", " Dana Levi ", true); !ok {
		t.Fatal("expected name fallback to find the legacy booking")
	}
	if _, ok := u.LastPastNight("123", "Dana Levi", false); ok {
		t.Fatal("expected no match with the name fallback disabled")
	}
	if _, ok := u.LastPastNight("123", "", true); ok {
		t.Fatal("an empty name must never match")
	}
}

func TestHorizon_RecentUsageShortensWindow(t *testing.T) {
	today := d("2025-08-01")
	bookings := []model.Booking{booking("a", "123", "Noa", "2025-07-22", "2025-07-23")}
	snap := NewSnapshot(today, bookings, nil)
	p := NewPolicy(DefaultLimits())

	far := request("123", "Noa", "2025-09-20", "2025-09-22") // 50 days out
	dec := p.Evaluate(far, snap)
	if dec.Allowed() || dec.Failure.Code != ReasonHorizonExceeded {
		t.Fatalf("expected horizon rejection, got %+v", dec)
	}

	near := request("123", "Noa", "2025-09-10", "2025-09-12") // 40 days out
	if dec := p.Evaluate(near, snap); !dec.Allowed() {
		t.Fatalf("expected 40 days out to pass, got %+v", dec.Failure)
	}

	other := request("456", "Yael", "2025-09-20", "2025-09-22")
	if dec := p.Evaluate(other, snap); !dec.Allowed() {
		t.Fatalf("expected member without recent usage to get 8 weeks, got %+v", dec.Failure)
	}
}

func TestHorizon_OldUsageDoesNotCount(t *testing.T) {
	bookings := []model.Booking{booking("a", "123", "Noa", "2025-01-10", "2025-01-12")}
	snap := NewSnapshot(d("2025-08-01"), bookings, nil)
	limit, recent := HorizonFor(request("123", "Noa", "2025-09-01", "2025-09-02"), snap, DefaultLimits())
	if recent {
		t.Fatal("usage older than six months must not shorten the horizon")
	}
	if limit.String() != "2025-09-26" {
		t.Fatalf("expected horizon 2025-09-26, got %s", limit)
	}
}

func TestConsecutiveCap(t *testing.T) {
	snap := NewSnapshot(d("2025-08-01"), nil, nil)
	if v := CheckConsecutive(request("123", "Noa", "2025-08-28", "2025-09-02"), snap, DefaultLimits()); !v.Passed() {
		t.Fatalf("expected 5 nights to pass, got %s", v.Message)
	}
	v := CheckConsecutive(request("123", "Noa", "2025-08-28", "2025-09-03"), snap, DefaultLimits())
	if v.Code != ReasonConsecutiveCapExceeded {
		t.Fatalf("expected consecutive cap across months, got %q", v.Code)
	}
}

func TestMonthlyCap_ListsEveryMonth(t *testing.T) {
	bookings := []model.Booking{
		booking("a", "123", "Noa", "2025-09-10", "2025-09-14"),
		booking("b", "123", "Noa", "2025-10-05", "2025-10-09"),
		booking("c", "234", "Avi", "2025-09-01", "2025-09-05"),
	}
	snap := NewSnapshot(d("2025-08-20"), bookings, nil)

	v := CheckMonthlyCap(request("123", "Noa", "2025-09-29", "2025-10-03"), snap, DefaultLimits())
	if v.Code != ReasonMonthlyCapExceeded {
		t.Fatalf("expected monthly cap rejection, got %q", v.Code)
	}
	if len(v.Months) != 2 || v.Months[0] != "2025-09" || v.Months[1] != "2025-10" {
		t.Fatalf("expected both months listed, got %v", v.Months)
	}

	if v := CheckMonthlyCap(request("123", "Noa", "2025-09-20", "2025-09-21"), snap, DefaultLimits()); !v.Passed() {
		t.Fatalf("expected the fifth september night to pass, got %v", v.Months)
	}
	if v := CheckMonthlyCap(request("456", "Yael", "2025-09-20", "2025-09-25"), snap, DefaultLimits()); !v.Passed() {
		t.Fatalf("other members' usage must not count, got %v", v.Months)
	}
}

func TestHolidayGate(t *testing.T) {
	specials := []model.SpecialPeriod{{ID: "h1", Type: model.SpecialTypeHoliday, Label: "Hanukkah", Start: d("2025-12-14"), End: d("2025-12-22")}}
	req := request("123", "Noa", "2025-12-15", "2025-12-17")
	lim := DefaultLimits()

	tests := []struct {
		today      string
		wantCode   ReasonCode
		wantNotice bool
	}{
		{"2025-10-01", ReasonHolidayNotOpen, false},
		{"2025-10-14", ReasonHolidayNotOpen, false},
		{"2025-10-15", "", true},
		{"2025-11-08", "", true},
		{"2025-11-09", "", false},
	}
	for _, tt := range tests {
		v := CheckHoliday(req, NewSnapshot(d(tt.today), nil, specials), lim)
		if v.Code != tt.wantCode {
			t.Fatalf("today %s: expected code %q, got %q", tt.today, tt.wantCode, v.Code)
		}
		if (v.Notice != nil) != tt.wantNotice {
			t.Fatalf("today %s: expected notice=%v, got %+v", tt.today, tt.wantNotice, v.Notice)
		}
	}

	outside := request("123", "Noa", "2025-12-22", "2025-12-24")
	if v := CheckHoliday(outside, NewSnapshot(d("2025-10-01"), nil, specials), lim); !v.Passed() || v.Notice != nil {
		t.Fatalf("checkout-day adjacency must not be gated, got %+v", v)
	}
}

func TestEvaluate_FirstFailureWins(t *testing.T) {
	snap := NewSnapshot(d("2025-08-01"), nil, nil)
	p := NewPolicy(DefaultLimits())
	req := request("123", "Noa", "2025-11-28", "2025-12-04") // beyond horizon and 6 nights
	dec := p.Evaluate(req, snap)
	if dec.Allowed() || dec.Failure.Code != ReasonHorizonExceeded {
		t.Fatalf("expected horizon to be reported first, got %+v", dec.Failure)
	}
	if v := CheckConsecutive(req, snap, p.Limits()); v.Code != ReasonConsecutiveCapExceeded {
		t.Fatalf("expected the consecutive check to fail on its own too, got %+v", v)
	}
}

func TestDetectConflicts(t *testing.T) {
	bookings := []model.Booking{booking("a", "123", "Noa", "2025-09-10", "2025-09-13")}

	free := DetectConflicts(calendar.Range{Start: d("2025-09-13"), End: d("2025-09-15")}, bookings)
	if free.Status != AvailabilityFree || len(free.Conflicts) != 0 {
		t.Fatalf("expected checkout-day start to be free, got %+v", free)
	}

	full := DetectConflicts(calendar.Range{Start: d("2025-09-11"), End: d("2025-09-13")}, bookings)
	if full.Status != AvailabilityFull || len(full.Conflicts) != 1 {
		t.Fatalf("expected full conflict, got %+v", full)
	}

	part := DetectConflicts(calendar.Range{Start: d("2025-09-08"), End: d("2025-09-15")}, bookings)
	if part.Status != AvailabilityPartial {
		t.Fatalf("expected partial, got %s", part.Status)
	}
	if len(part.Occupied)+len(part.Free) != 7 {
		t.Fatalf("occupied and free must cover the request, got %d+%d", len(part.Occupied), len(part.Free))
	}
	segs := part.FreeSegments()
	want := []string{"2025-09-08..2025-09-10", "2025-09-13..2025-09-15"}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %v", len(want), segs)
	}
	for i, s := range segs {
		if s.String() != want[i] {
			t.Fatalf("segment %d: expected %s, got %s", i, want[i], s)
		}
	}
}

func TestFindAlternative_WeekendCharacter(t *testing.T) {
	occ := OccupiedNights([]model.Booking{booking("a", "123", "Noa", "2025-09-10", "2025-09-13")})
	req := calendar.Range{Start: d("2025-09-12"), End: d("2025-09-14")}
	alt, ok := FindAlternative(req, occ, 120)
	if !ok {
		t.Fatal("expected an alternative")
	}
	if alt.String() != "2025-09-13..2025-09-15" {
		t.Fatalf("expected 2025-09-13..2025-09-15, got %s", alt)
	}
	if alt.Nights() != req.Nights() {
		t.Fatalf("expected %d nights, got %d", req.Nights(), alt.Nights())
	}
	if !calendar.HasWeekendNight(calendar.NightsInRange(alt.Start, alt.End)) {
		t.Fatal("weekend request must get a weekend alternative")
	}
}

func TestFindAlternative_MidweekSkipsWeekends(t *testing.T) {
	// Monday 2025-09-08 to Wednesday, occupied.
	occ := OccupiedNights([]model.Booking{booking("a", "123", "Noa", "2025-09-08", "2025-09-10")})
	req := calendar.Range{Start: d("2025-09-08"), End: d("2025-09-10")}
	alt, ok := FindAlternative(req, occ, 120)
	if !ok {
		t.Fatal("expected an alternative")
	}
	if alt.String() != "2025-09-10..2025-09-12" {
		t.Fatalf("expected Wed-Fri checkout window, got %s", alt)
	}
	for _, n := range calendar.NightsInRange(alt.Start, alt.End) {
		if calendar.IsWeekendNight(n) {
			t.Fatalf("midweek request got weekend night %s", n)
		}
	}
}

func TestFindAlternative_NoneWithinSearch(t *testing.T) {
	occ := OccupiedNights([]model.Booking{booking("a", "123", "Noa", "2025-09-01", "2025-09-30")})
	if _, ok := FindAlternative(calendar.Range{Start: d("2025-09-05"), End: d("2025-09-07")}, occ, 10); ok {
		t.Fatal("expected no alternative inside a 10 day search")
	}
}

func TestScenario_SeedBookings(t *testing.T) {
	bookings := []model.Booking{
		booking("s1", "234", "Avi", "2025-09-18", "2025-09-20"),
		booking("s2", "123", "Noa", "2025-09-10", "2025-09-13"),
	}
	today := d("2025-09-01")
	req := request("234", "Avi", "2025-09-10", "2025-09-13")

	if dec := NewPolicy(DefaultLimits()).Evaluate(req, NewSnapshot(today, bookings, nil)); !dec.Allowed() {
		t.Fatalf("expected policy to pass, got %+v", dec.Failure)
	}
	rep := DetectConflicts(req.Range(), bookings)
	if rep.Status != AvailabilityFull || len(rep.Conflicts) != 1 || rep.Conflicts[0].MemberID != "123" {
		t.Fatalf("expected full conflict with member 123, got %+v", rep)
	}
	alt, ok := FindAlternative(req.Range(), OccupiedNights(bookings), 120)
	if !ok || alt.String() != "2025-09-13..2025-09-16" {
		t.Fatalf("expected 2025-09-13..2025-09-16, got %s (ok=%v)", alt, ok)
	}
}

func TestLastVacation(t *testing.T) {
	bookings := []model.Booking{
		booking("a", "123", "Noa", "2025-06-01", "2025-06-03"),
		booking("b", "123", "Noa", "2025-07-10", "2025-07-12"),
		booking("c", "123", "Noa", "2025-07-12", "2025-07-14"),
		booking("d", "234", "Avi", "2025-08-01", "2025-08-03"),
	}
	r, ok := LastVacation(bookings, "123")
	if !ok || r.String() != "2025-07-10..2025-07-14" {
		t.Fatalf("expected merged block 2025-07-10..2025-07-14, got %s", r)
	}
	if _, ok := LastVacation(bookings, "777"); ok {
		t.Fatal("expected no vacation for unknown member")
	}
}
