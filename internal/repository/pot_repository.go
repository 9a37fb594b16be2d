package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/spot-reservation/internal/database"
	"github.com/iliyamo/spot-reservation/internal/model"
)

const potColumns = `id, user_id, name, amount_goal, date_goal, type, created_at, updated_at`

// PotRepo stores savings pots.  Goal columns are nullable and map to
// null.Int / null.Time on the model.
type PotRepo struct{ conn sqlConn }

// NewPotRepo returns a PotRepo bound to db.
func NewPotRepo(db *sql.DB, dialect database.Dialect) *PotRepo {
	return &PotRepo{conn: sqlConn{q: db, dialect: dialect}}
}

// Create inserts p and sets its ID.
func (r *PotRepo) Create(ctx context.Context, p *model.Pot) error {
	const q = `INSERT INTO pots (user_id, name, amount_goal, date_goal, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := r.conn.insert(ctx, q, p.OwnerID, p.Name, p.AmountGoal, p.DateGoal, p.Type, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pot: %w", err)
	}
	p.ID = id
	return nil
}

// GetByID returns the pot with id or ErrNotFound.
func (r *PotRepo) GetByID(ctx context.Context, id uint64) (model.Pot, error) {
	row := r.conn.queryRow(ctx, `SELECT `+potColumns+` FROM pots WHERE id = ? LIMIT 1`, id)
	p, err := scanPot(row)
	if err != nil {
		return model.Pot{}, notFound(err)
	}
	return p, nil
}

// ListByOwner returns the pots of ownerID, newest first.
func (r *PotRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pot, error) {
	rows, err := r.conn.query(ctx, `SELECT `+potColumns+` FROM pots WHERE user_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Pot
	for rows.Next() {
		p, err := scanPot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update overwrites the mutable columns of p.  Ownership is not checked
// here; callers authorize before updating.
func (r *PotRepo) Update(ctx context.Context, p *model.Pot) error {
	const q = `UPDATE pots SET name = ?, amount_goal = ?, date_goal = ?, type = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.exec(ctx, q, p.Name, p.AmountGoal, p.DateGoal, p.Type, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update pot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPot(s rowScanner) (model.Pot, error) {
	var p model.Pot
	err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.AmountGoal, &p.DateGoal, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

var _ PotStore = (*PotRepo)(nil)
