package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/spot-reservation/internal/database"
	"github.com/iliyamo/spot-reservation/internal/model"
)

const userColumns = `id, email, password_hash, firstname, lastname, created_at`

// UserRepo stores user accounts.  The password must already be hashed.
type UserRepo struct{ conn sqlConn }

func NewUserRepo(db *sql.DB, dialect database.Dialect) *UserRepo {
	return &UserRepo{conn: sqlConn{q: db, dialect: dialect}}
}

// Create inserts u with a normalized email and sets its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	const q = `INSERT INTO users (email, password_hash, firstname, lastname, created_at) VALUES (?, ?, ?, ?, ?)`
	id, err := r.conn.insert(ctx, q, u.Email, u.PasswordHash, u.Firstname, u.Lastname, u.CreatedAt)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.conn.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, normalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.conn.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	return scanUser(row)
}

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname, &u.CreatedAt); err != nil {
		return model.User{}, notFound(err)
	}
	return u, nil
}

// normalizeEmail lower-cases and trims an address before storage or lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ UserStore = (*UserRepo)(nil)
