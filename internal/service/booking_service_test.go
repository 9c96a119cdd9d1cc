package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
)

func TestCheckAndCommit_Free(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	ctx := context.Background()

	res, err := f.svc.Booking.Check(ctx, req("12", " Noa Cohen ", "2025-09-10", "2025-09-12"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != StatusOK || res.CheckToken == "" {
		t.Fatalf("expected ok with token, got %+v", res)
	}
	if res.Request.MemberID != "012" || res.Request.MemberName != "Noa Cohen" {
		t.Fatalf("expected normalized request, got %+v", res.Request)
	}

	b, err := f.svc.Booking.Commit(ctx, CommitInput{
		CheckToken: res.CheckToken,
		Current:    req("012", "Noa Cohen", "2025-09-10", "2025-09-12"),
		Selected:   rng("2025-09-10", "2025-09-12"),
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if b.ID == "" || b.MemberID != "012" || b.NightCount() != 2 {
		t.Fatalf("unexpected booking %+v", b)
	}
	if got := f.bookings(t); len(got) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(got))
	}
	if types := f.rec.types(); len(types) != 1 || types[0] != queue.EventBookingCreated {
		t.Fatalf("expected one booking.created event, got %v", types)
	}
	if f.rec.invalidated != 1 {
		t.Fatalf("expected cache purge after commit, got %d", f.rec.invalidated)
	}
}

func TestCheck_ValidationErrors(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	tests := []struct {
		name  string
		in    model.CheckRequest
		field string
	}{
		{"four digit id", req("1234", "Noa", "2025-09-10", "2025-09-12"), "member_id"},
		{"no digits", req("abc", "Noa", "2025-09-10", "2025-09-12"), "member_id"},
		{"empty name", req("123", "  ", "2025-09-10", "2025-09-12"), "member_name"},
		{"empty range", req("123", "Noa", "2025-09-10", "2025-09-10"), "end"},
		{"reversed", req("123", "Noa", "2025-09-12", "2025-09-10"), "end"},
		{"missing start", model.CheckRequest{MemberID: "123", MemberName: "Noa", End: d("2025-09-10")}, "start"},
	}
	for _, tt := range tests {
		_, err := f.svc.Booking.Check(context.Background(), tt.in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tt.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tt.name, tt.field, err)
		}
	}
}

func TestCheck_PolicyRejection(t *testing.T) {
	f := newFixture(t, "2025-09-01", seedBooking("a", "123", "Noa Cohen", "2025-09-20", "2025-09-24"))
	res, err := f.svc.Booking.Check(context.Background(), req("123", "Noa Cohen", "2025-09-26", "2025-09-28"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != StatusPolicyRejected || res.ReasonCode != rules.ReasonMonthlyCapExceeded {
		t.Fatalf("expected monthly cap rejection, got %+v", res)
	}
	if len(res.Months) != 1 || res.Months[0] != "2025-09" {
		t.Fatalf("expected month 2025-09, got %v", res.Months)
	}
	if res.Committable() {
		t.Fatal("a rejected result must not be committable")
	}

	_, err = f.svc.Booking.Commit(context.Background(), CommitInput{CheckToken: res.CheckToken, Current: res.Request})
	var ce *CommitError
	if !errors.As(err, &ce) || !errors.Is(err, ErrPolicyRejected) {
		t.Fatalf("expected ErrPolicyRejected for a rejected check, got %v", err)
	}
	if ce.Result.Status != StatusPolicyRejected || ce.Result.ReasonCode != rules.ReasonMonthlyCapExceeded {
		t.Fatalf("expected the re-evaluated rejection, got %+v", ce.Result)
	}
	if len(f.bookings(t)) != 1 {
		t.Fatal("a rejected commit must not write")
	}
}

func TestCheck_Idempotent(t *testing.T) {
	f := newFixture(t, "2025-09-01",
		seedBooking("s1", "234", "Avi Levi", "2025-09-18", "2025-09-20"),
		seedBooking("s2", "123", "Noa Cohen", "2025-09-10", "2025-09-13"),
	)
	ctx := context.Background()
	for _, in := range []model.CheckRequest{
		req("234", "Avi Levi", "2025-09-10", "2025-09-13"),
		req("345", "Dana Mizrahi", "2025-09-09", "2025-09-14"),
		req("345", "Dana Mizrahi", "2025-09-22", "2025-09-24"),
		req("123", "Noa Cohen", "2025-09-24", "2025-09-27"),
	} {
		first, err := f.svc.Booking.Check(ctx, in)
		if err != nil {
			t.Fatalf("check %s: %v", in.Range(), err)
		}
		second, err := f.svc.Booking.Check(ctx, in)
		if err != nil {
			t.Fatalf("check %s again: %v", in.Range(), err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected identical results for %s, got %+v and %+v", in.Range(), first, second)
		}
	}
}

func TestScenario_FullyBlockedCommitsAlternative(t *testing.T) {
	f := newFixture(t, "2025-09-01",
		seedBooking("s1", "234", "Avi Levi", "2025-09-18", "2025-09-20"),
		seedBooking("s2", "123", "Noa Cohen", "2025-09-10", "2025-09-13"),
	)
	ctx := context.Background()
	in := req("234", "Avi Levi", "2025-09-10", "2025-09-13")

	res, err := f.svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != StatusFullyBlocked {
		t.Fatalf("expected fully blocked, got %s", res.Status)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].ID != "s2" {
		t.Fatalf("expected conflict with s2, got %+v", res.Conflicts)
	}
	if res.Alternative == nil || res.Alternative.String() != "2025-09-13..2025-09-16" {
		t.Fatalf("expected alternative 2025-09-13..2025-09-16, got %v", res.Alternative)
	}

	b, err := f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in, Selected: *res.Alternative})
	if err != nil {
		t.Fatalf("commit alternative: %v", err)
	}
	if b.Range().String() != "2025-09-13..2025-09-16" {
		t.Fatalf("expected booking on the alternative, got %s", b.Range())
	}
}

func TestCommit_PartialSegments(t *testing.T) {
	f := newFixture(t, "2025-09-01", seedBooking("s", "123", "Noa Cohen", "2025-09-10", "2025-09-13"))
	ctx := context.Background()
	in := req("234", "Avi Levi", "2025-09-09", "2025-09-14")

	res, err := f.svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != StatusPartiallyBlocked || len(res.FreeSegments) != 2 {
		t.Fatalf("expected two free segments, got %+v", res)
	}

	_, err = f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in, Selected: rng("2025-09-09", "2025-09-11")})
	if !errors.Is(err, ErrSnapshotChanged) {
		t.Fatalf("expected a range outside the offers to be refused, got %v", err)
	}

	b, err := f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in, Selected: rng("2025-09-13", "2025-09-14")})
	if err != nil {
		t.Fatalf("commit segment: %v", err)
	}
	if b.NightCount() != 1 || b.Start.String() != "2025-09-13" {
		t.Fatalf("expected the one-night segment, got %s", b.Range())
	}
}

func TestCommit_StaleInputs(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	ctx := context.Background()
	in := req("123", "Noa Cohen", "2025-09-10", "2025-09-12")
	res, err := f.svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	changed := in
	changed.End = d("2025-09-13")
	if _, err := f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: changed}); !errors.Is(err, ErrStaleRequest) {
		t.Fatalf("expected ErrStaleRequest for changed dates, got %v", err)
	}
	if _, err := f.svc.Booking.Commit(ctx, CommitInput{CheckToken: "garbage", Current: in}); !errors.Is(err, ErrStaleRequest) {
		t.Fatalf("expected ErrStaleRequest for a bad token, got %v", err)
	}
	if len(f.bookings(t)) != 0 {
		t.Fatal("stale commits must not write")
	}
}

func TestCommit_SnapshotChanged(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	ctx := context.Background()
	in := req("123", "Noa Cohen", "2025-09-10", "2025-09-12")
	res, err := f.svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	// Another session books the same nights in between.
	if err := f.store.SaveBookings(ctx, []model.Booking{seedBooking("x", "234", "Avi Levi", "2025-09-09", "2025-09-13")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err = f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in})
	var ce *CommitError
	if !errors.As(err, &ce) || !errors.Is(err, ErrSnapshotChanged) {
		t.Fatalf("expected CommitError(ErrSnapshotChanged), got %v", err)
	}
	if ce.Result.Status != StatusFullyBlocked || ce.Result.CheckToken == "" {
		t.Fatalf("expected re-evaluated fully blocked result with a fresh token, got %+v", ce.Result)
	}
	if len(f.bookings(t)) != 1 {
		t.Fatal("refused commit must not write")
	}
}

func TestCommit_ConcurrentSameNights(t *testing.T) {
	f := newFixture(t, "2025-09-01")
	ctx := context.Background()
	a := req("123", "Noa Cohen", "2025-09-10", "2025-09-12")
	b := req("234", "Avi Levi", "2025-09-11", "2025-09-13")
	ra, err := f.svc.Booking.Check(ctx, a)
	if err != nil {
		t.Fatalf("check a: %v", err)
	}
	rb, err := f.svc.Booking.Check(ctx, b)
	if err != nil {
		t.Fatalf("check b: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, in := range []CommitInput{{CheckToken: ra.CheckToken, Current: a}, {CheckToken: rb.CheckToken, Current: b}} {
		wg.Add(1)
		go func(i int, in CommitInput) {
			defer wg.Done()
			_, errs[i] = f.svc.Booking.Commit(ctx, in)
		}(i, in)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrSnapshotChanged) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || len(f.bookings(t)) != 1 {
		t.Fatalf("expected exactly one overlapping commit to win, got %d successes and %d bookings", ok, len(f.bookings(t)))
	}
}

func TestCommit_HolidayPendingNote(t *testing.T) {
	f := newFixture(t, "2025-10-20")
	ctx := context.Background()
	if _, err := f.svc.Specials.Add(ctx, model.SpecialPeriod{Label: "Hanukkah", Start: d("2025-12-14"), End: d("2025-12-22")}); err != nil {
		t.Fatalf("add special: %v", err)
	}
	in := req("345", "Dana Mizrahi", "2025-12-15", "2025-12-17")
	res, err := f.svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != StatusOK || res.Notice == nil || res.Notice.Code != rules.ReasonHolidayPendingDecision {
		t.Fatalf("expected ok with pending notice, got %+v", res)
	}
	b, err := f.svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !strings.Contains(b.Note, "Hanukkah") || !strings.Contains(b.Note, "09-11-2025") {
		t.Fatalf("expected pending note on the booking, got %q", b.Note)
	}
}

func TestCommit_StoreFailure(t *testing.T) {
	store := failingStore{repository.NewMemoryStore()}
	now := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	svc := New(Options{
		Store:       store,
		Limits:      rules.DefaultLimits(),
		Clock:       func() time.Time { return now },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		TokenSecret: "k",
	})
	ctx := context.Background()
	in := req("123", "Noa Cohen", "2025-09-10", "2025-09-12")
	res, err := svc.Booking.Check(ctx, in)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, err := svc.Booking.Commit(ctx, CommitInput{CheckToken: res.CheckToken, Current: in}); !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestComposeMail(t *testing.T) {
	f := newFixture(t, "2025-09-01", seedBooking("s", "123", "Noa Cohen", "2025-09-10", "2025-09-13"))
	ctx := context.Background()
	res, err := f.svc.Booking.Check(ctx, req("234", "Avi Levi", "2025-09-10", "2025-09-13"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	msg, err := f.svc.Booking.ComposeMail(ctx, res.CheckToken)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(msg.Body, "Avi Levi (id 234)") || !strings.Contains(msg.Body, "fully_blocked") {
		t.Fatalf("unexpected body:\n%s", msg.Body)
	}
	if !strings.HasPrefix(msg.Mailto, "mailto:") {
		t.Fatalf("unexpected mailto %s", msg.Mailto)
	}
}
