package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/model"
	"github.com/iliyamo/spot-reservation/internal/repository"
)

// reservationRepositoryInMemory keeps reservations in a slice. InTx holds
// txMu for the whole callback so transactions run one at a time, which is
// the in-memory equivalent of serializable isolation.
type reservationRepositoryInMemory struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	items  []model.Reservation
	nextID uint64
}

// NewReservationRepository returns an in-memory reservation store for local
// development and tests.
func NewReservationRepository() repository.ReservationStore {
	return &reservationRepositoryInMemory{}
}

func (r *reservationRepositoryInMemory) FindBySpotAndDate(_ context.Context, day time.Time, spot int) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filter(r.items, func(res model.Reservation) bool {
		return res.Spot == spot && calendar.SameDay(res.BookedAt, day)
	}), nil
}

func (r *reservationRepositoryInMemory) FindByDate(_ context.Context, day time.Time) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := filter(r.items, func(res model.Reservation) bool {
		return calendar.SameDay(res.BookedAt, day)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Spot < out[j].Spot })
	return out, nil
}

func (r *reservationRepositoryInMemory) FindByOwner(_ context.Context, ownerID uint64) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := filter(r.items, func(res model.Reservation) bool {
		return res.OwnerID == ownerID
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.After(out[j].BookedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetByID returns the reservation or ErrNotFound.
func (r *reservationRepositoryInMemory) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.items {
		if res.ID == id {
			return res, nil
		}
	}
	return model.Reservation{}, repository.ErrNotFound
}

// InTx stages creates made by fn and applies them only when fn succeeds.
func (r *reservationRepositoryInMemory) InTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &reservationTx{repo: r}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, tx.pending...)
	return nil
}

// insertable checks both uniqueness rules against committed and staged rows.
func insertable(rows []model.Reservation, c model.Reservation) error {
	week := c.ISOWeek()
	for _, res := range rows {
		if res.Spot == c.Spot && calendar.SameDay(res.BookedAt, c.BookedAt) {
			return repository.ErrSpotTaken
		}
		if res.OwnerID == c.OwnerID && res.ISOWeek() == week {
			return repository.ErrWeekTaken
		}
	}
	return nil
}

// reservationTx reads committed rows plus its own staged rows.
type reservationTx struct {
	repo    *reservationRepositoryInMemory
	pending []model.Reservation
}

func (tx *reservationTx) FindBySpotAndDate(ctx context.Context, day time.Time, spot int) ([]model.Reservation, error) {
	out, _ := tx.repo.FindBySpotAndDate(ctx, day, spot)
	return append(out, filter(tx.pending, func(res model.Reservation) bool {
		return res.Spot == spot && calendar.SameDay(res.BookedAt, day)
	})...), nil
}

func (tx *reservationTx) FindByDate(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	out, _ := tx.repo.FindByDate(ctx, day)
	return append(out, filter(tx.pending, func(res model.Reservation) bool {
		return calendar.SameDay(res.BookedAt, day)
	})...), nil
}

func (tx *reservationTx) FindByOwner(ctx context.Context, ownerID uint64) ([]model.Reservation, error) {
	out, _ := tx.repo.FindByOwner(ctx, ownerID)
	return append(out, filter(tx.pending, func(res model.Reservation) bool {
		return res.OwnerID == ownerID
	})...), nil
}

// Create assigns an ID and stages res for commit.
func (tx *reservationTx) Create(_ context.Context, res *model.Reservation) error {
	res.BookedAt = calendar.Day(res.BookedAt)

	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	if err := insertable(tx.repo.items, *res); err != nil {
		return err
	}
	if err := insertable(tx.pending, *res); err != nil {
		return err
	}
	tx.repo.nextID++
	res.ID = tx.repo.nextID
	tx.pending = append(tx.pending, *res)
	return nil
}

func filter(items []model.Reservation, keep func(model.Reservation) bool) []model.Reservation {
	out := make([]model.Reservation, 0)
	for _, res := range items {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

var _ repository.ReservationStore = (*reservationRepositoryInMemory)(nil)
