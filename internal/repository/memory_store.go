package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// MemoryStore keeps the collections in process memory.  Every load returns
// a copy and every save swaps in a copy, so callers never share slices
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings []model.Booking
	members  []model.Member
	specials []model.SpecialPeriod
}

// NewMemoryStore returns a store seeded with bookings.
func NewMemoryStore(seed ...model.Booking) *MemoryStore {
	return &MemoryStore{bookings: model.CloneBookings(seed)}
}

func (s *MemoryStore) LoadBookings(_ context.Context) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneBookings(s.bookings), nil
}

func (s *MemoryStore) SaveBookings(_ context.Context, bookings []model.Booking) error {
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("save bookings: %w", ErrDuplicate)
		}
		seen[b.ID] = struct{}{}
	}
	s.mu.Lock()
	s.bookings = model.CloneBookings(bookings)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadMembers(_ context.Context) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Member(nil), s.members...), nil
}

func (s *MemoryStore) SaveMembers(_ context.Context, members []model.Member) error {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("save members: %w", ErrDuplicate)
		}
		seen[m.ID] = struct{}{}
	}
	s.mu.Lock()
	s.members = append([]model.Member(nil), members...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadSpecials(_ context.Context) ([]model.SpecialPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SpecialPeriod(nil), s.specials...), nil
}

func (s *MemoryStore) SaveSpecials(_ context.Context, specials []model.SpecialPeriod) error {
	s.mu.Lock()
	s.specials = append([]model.SpecialPeriod(nil), specials...)
	s.mu.Unlock()
	return nil
}
