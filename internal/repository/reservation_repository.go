package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/database"
	"github.com/iliyamo/spot-reservation/internal/model"
)

// Constraint names declared in the embedded schema.
const (
	constraintDaySpot   = "uq_reservations_day_spot"
	constraintOwnerWeek = "uq_reservations_owner_week"
)

const reservationColumns = `id, reference, booked_at, spot, user_id, created_at`

// ReservationRepo stores reservations in MySQL or Postgres.  Booked days
// are written as YYYY-MM-DD strings so that neither driver applies a
// time zone conversion to them.
type ReservationRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db *sql.DB, dialect database.Dialect) *ReservationRepo {
	return &ReservationRepo{db: db, dialect: dialect}
}

func (r *ReservationRepo) conn() reservationConn {
	return reservationConn{sqlConn{q: r.db, dialect: r.dialect}}
}

// FindBySpotAndDate implements ReservationReader.
func (r *ReservationRepo) FindBySpotAndDate(ctx context.Context, day time.Time, spot int) ([]model.Reservation, error) {
	return r.conn().FindBySpotAndDate(ctx, day, spot)
}

// FindByDate implements ReservationReader.
func (r *ReservationRepo) FindByDate(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	return r.conn().FindByDate(ctx, day)
}

// FindByOwner implements ReservationReader.
func (r *ReservationRepo) FindByOwner(ctx context.Context, ownerID uint64) ([]model.Reservation, error) {
	return r.conn().FindByOwner(ctx, ownerID)
}

// GetByID returns the reservation with id or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.conn().queryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? LIMIT 1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return model.Reservation{}, notFound(err)
	}
	return res, nil
}

// InTx runs fn inside a serializable transaction.  A serialization failure
// or deadlock, whether raised by a statement or by the commit, is
// reported as ErrConflict.
func (r *ReservationRepo) InTx(ctx context.Context, fn func(tx ReservationTx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
		if err != nil && database.IsSerializationFailure(err) {
			err = fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}()

	if err = fn(reservationConn{sqlConn{q: tx, dialect: r.dialect}}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// reservationConn holds the queries shared by the repo and its transactions.
type reservationConn struct{ sqlConn }

func (c reservationConn) FindBySpotAndDate(ctx context.Context, day time.Time, spot int) ([]model.Reservation, error) {
	return c.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE booked_at = ? AND spot = ?`,
		calendar.FormatDay(day), spot)
}

func (c reservationConn) FindByDate(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	return c.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE booked_at = ? ORDER BY spot`,
		calendar.FormatDay(day))
}

func (c reservationConn) FindByOwner(ctx context.Context, ownerID uint64) ([]model.Reservation, error) {
	return c.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY booked_at DESC, id DESC`,
		ownerID)
}

// Create inserts r and sets its ID.  Unique violations are translated by
// constraint name into ErrSpotTaken or ErrWeekTaken.
func (c reservationConn) Create(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (reference, booked_at, spot, user_id, iso_week, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	id, err := c.insert(ctx, q,
		r.Reference, calendar.FormatDay(r.BookedAt), r.Spot, r.OwnerID, r.ISOWeek().String(), r.CreatedAt)
	if err != nil {
		if name, ok := database.UniqueViolation(err); ok {
			switch name {
			case constraintDaySpot:
				return ErrSpotTaken
			case constraintOwnerWeek:
				return ErrWeekTaken
			}
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	r.ID = id
	return nil
}

func (c reservationConn) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var res model.Reservation
	if err := s.Scan(&res.ID, &res.Reference, &res.BookedAt, &res.Spot, &res.OwnerID, &res.CreatedAt); err != nil {
		return model.Reservation{}, err
	}
	res.BookedAt = calendar.Day(res.BookedAt)
	return res, nil
}

var (
	_ ReservationStore = (*ReservationRepo)(nil)
	_ ReservationTx    = reservationConn{}
)
