package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// BookingRepo stores the booking collection in the bookings table.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// LoadBookings returns every booking in the order it was saved.
func (r *BookingRepo) LoadBookings(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT id, member_id, member_name, start_date, end_date, note FROM bookings ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.MemberID, &b.MemberName, &b.Start, &b.End, &b.Note); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveBookings replaces the whole collection in one transaction.
func (r *BookingRepo) SaveBookings(ctx context.Context, bookings []model.Booking) error {
	rows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []interface{}{b.ID, b.MemberID, b.MemberName, b.Start, b.End, b.Note})
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceAllTx(ctx, tx, "bookings", "id, member_id, member_name, start_date, end_date, note", 6, rows)
	})
	if isDuplicateKey(err) {
		return fmt.Errorf("save bookings: %w", ErrDuplicate)
	}
	return err
}
