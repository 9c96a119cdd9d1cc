package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*MySQLStore)(nil)

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(model.Booking{ID: "a", MemberID: "123", Start: calendar.MustParse("2025-09-10"), End: calendar.MustParse("2025-09-12")})

	got, err := s.LoadBookings(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got[0].MemberID = "999"
	again, _ := s.LoadBookings(ctx)
	if again[0].MemberID != "123" {
		t.Fatalf("mutating a loaded slice leaked into the store: %s", again[0].MemberID)
	}
}

func TestMemoryStore_SaveRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(model.Booking{ID: "keep"})
	err := s.SaveBookings(ctx, []model.Booking{{ID: "x"}, {ID: "x"}})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, _ := s.LoadBookings(ctx)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("failed save must leave the collection unchanged, got %v", got)
	}

	if err := s.SaveMembers(ctx, []model.Member{{ID: "001"}, {ID: "001"}}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for members, got %v", err)
	}
}
