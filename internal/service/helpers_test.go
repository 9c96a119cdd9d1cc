package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/rules"
)

type recorder struct {
	mu          sync.Mutex
	events      []queue.BookingEvent
	invalidated int
}

func (r *recorder) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Invalidate(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated++
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc   *Services
	store *repository.MemoryStore
	rec   *recorder
	now   time.Time
}

func newFixture(t *testing.T, today string, seed ...model.Booking) *fixture {
	t.Helper()
	d := calendar.MustParse(today)
	now := d.Time().Add(9 * time.Hour)
	store := repository.NewMemoryStore(seed...)
	if err := store.SaveMembers(context.Background(), []model.Member{
		{ID: "123", Name: "Noa Cohen"},
		{ID: "234", Name: "Avi Levi"},
		{ID: "345", Name: "Dana Mizrahi"},
	}); err != nil {
		t.Fatalf("seed members: %v", err)
	}
	rec := &recorder{}
	svc := New(Options{
		Store:         store,
		Limits:        rules.DefaultLimits(),
		Location:      time.UTC,
		Clock:         func() time.Time { return now },
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Events:        rec,
		Cache:         rec,
		TokenSecret:   "test-secret",
		CheckTokenTTL: 30 * time.Minute,
	})
	return &fixture{svc: svc, store: store, rec: rec, now: now}
}

func (f *fixture) bookings(t *testing.T) []model.Booking {
	t.Helper()
	bs, err := f.store.LoadBookings(context.Background())
	if err != nil {
		t.Fatalf("load bookings: %v", err)
	}
	return bs
}

func d(s string) calendar.Date { return calendar.MustParse(s) }

func rng(start, end string) calendar.Range { return calendar.Range{Start: d(start), End: d(end)} }

func req(member, name, start, end string) model.CheckRequest {
	return model.CheckRequest{MemberID: member, MemberName: name, Start: d(start), End: d(end)}
}

func seedBooking(id, member, name, start, end string) model.Booking {
	return model.Booking{ID: id, MemberID: member, MemberName: name, Start: d(start), End: d(end)}
}

// failingStore fails every booking save.
type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) SaveBookings(context.Context, []model.Booking) error {
	return errors.New("disk full")
}
