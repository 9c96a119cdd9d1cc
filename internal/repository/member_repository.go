package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// MemberRepo stores the member list.
type MemberRepo struct{ db *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

func (r *MemberRepo) LoadMembers(ctx context.Context) ([]model.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM members ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepo) SaveMembers(ctx context.Context, members []model.Member) error {
	rows := make([][]interface{}, 0, len(members))
	for _, m := range members {
		rows = append(rows, []interface{}{m.ID, m.Name})
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceAllTx(ctx, tx, "members", "id, name", 2, rows)
	})
	if isDuplicateKey(err) {
		return fmt.Errorf("save members: %w", ErrDuplicate)
	}
	return err
}
