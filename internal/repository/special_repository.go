package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// SpecialRepo stores the holiday windows.
type SpecialRepo struct{ db *sql.DB }

func NewSpecialRepo(db *sql.DB) *SpecialRepo { return &SpecialRepo{db: db} }

// LoadSpecials returns every special period ordered by start date.
func (r *SpecialRepo) LoadSpecials(ctx context.Context) ([]model.SpecialPeriod, error) {
	const q = `SELECT id, type, label, start_date, end_date FROM special_periods ORDER BY start_date, seq`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SpecialPeriod
	for rows.Next() {
		var s model.SpecialPeriod
		if err := rows.Scan(&s.ID, &s.Type, &s.Label, &s.Start, &s.End); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SpecialRepo) SaveSpecials(ctx context.Context, specials []model.SpecialPeriod) error {
	rows := make([][]interface{}, 0, len(specials))
	for _, s := range specials {
		rows = append(rows, []interface{}{s.ID, s.Type, s.Label, s.Start, s.End})
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceAllTx(ctx, tx, "special_periods", "id, type, label, start_date, end_date", 5, rows)
	})
	if isDuplicateKey(err) {
		return fmt.Errorf("save specials: %w", ErrDuplicate)
	}
	return err
}

// MySQLStore joins the three repositories into one Store.
type MySQLStore struct {
	*BookingRepo
	*MemberRepo
	*SpecialRepo
}

// NewMySQLStore wires the repositories to db.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		BookingRepo: NewBookingRepo(db),
		MemberRepo:  NewMemberRepo(db),
		SpecialRepo: NewSpecialRepo(db),
	}
}
