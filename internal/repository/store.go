package repository

import (
	"context"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// BookingStore loads and atomically replaces the booking collection.
type BookingStore interface {
	LoadBookings(ctx context.Context) ([]model.Booking, error)
	SaveBookings(ctx context.Context, bookings []model.Booking) error
}

// MemberStore loads and atomically replaces the member list.
type MemberStore interface {
	LoadMembers(ctx context.Context) ([]model.Member, error)
	SaveMembers(ctx context.Context, members []model.Member) error
}

// SpecialStore loads and atomically replaces the special periods.
type SpecialStore interface {
	LoadSpecials(ctx context.Context) ([]model.SpecialPeriod, error)
	SaveSpecials(ctx context.Context, specials []model.SpecialPeriod) error
}

// Store bundles the three collections.  Both the MySQL and the in-memory
// implementations satisfy it.
type Store interface {
	BookingStore
	MemberStore
	SpecialStore
}
