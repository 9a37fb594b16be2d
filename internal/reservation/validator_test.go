package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/model"
)

// tableQueries answers the three queries from an in-memory table.
type tableQueries struct {
	rows  []model.Reservation
	calls []string
}

func (q *tableQueries) FindBySpotAndDate(_ context.Context, day time.Time, spot int) ([]model.Reservation, error) {
	q.calls = append(q.calls, "spot")
	var out []model.Reservation
	for _, r := range q.rows {
		if r.Spot == spot && calendar.SameDay(r.BookedAt, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (q *tableQueries) FindByDate(_ context.Context, day time.Time) ([]model.Reservation, error) {
	q.calls = append(q.calls, "date")
	var out []model.Reservation
	for _, r := range q.rows {
		if calendar.SameDay(r.BookedAt, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (q *tableQueries) FindByOwner(_ context.Context, ownerID uint64) ([]model.Reservation, error) {
	q.calls = append(q.calls, "owner")
	var out []model.Reservation
	for _, r := range q.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// cannedQueries returns fixed results per query regardless of arguments.
type cannedQueries struct {
	bySpot  []model.Reservation
	byDate  []model.Reservation
	byOwner []model.Reservation
	err     error
}

func (q cannedQueries) FindBySpotAndDate(context.Context, time.Time, int) ([]model.Reservation, error) {
	return q.bySpot, q.err
}
func (q cannedQueries) FindByDate(context.Context, time.Time) ([]model.Reservation, error) {
	return q.byDate, q.err
}
func (q cannedQueries) FindByOwner(context.Context, uint64) ([]model.Reservation, error) {
	return q.byOwner, q.err
}

const (
	ownerA uint64 = 1
	ownerB uint64 = 2
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func res(owner uint64, booked time.Time, spot int) model.Reservation {
	return model.Reservation{Reference: "ref", BookedAt: booked, Spot: spot, OwnerID: owner}
}

// fixedValidator pretends today is 2024-06-01 (a Saturday).
func fixedValidator() *Validator {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	return NewValidator(WithClock(func() time.Time { return now }))
}

func requireCategory(t *testing.T, err error, want Category) {
	t.Helper()
	rej, ok := AsRejection(err)
	require.True(t, ok, "expected rejection %s, got %v", want, err)
	assert.Equal(t, want, rej.Category)
	assert.NotEmpty(t, rej.Message)
}

func TestValidate_Scenario(t *testing.T) {
	monday := day(2024, time.June, 10)
	q := &tableQueries{rows: []model.Reservation{res(ownerA, monday, 3)}}
	v := fixedValidator()
	ctx := context.Background()

	err := v.Validate(ctx, q, res(ownerB, monday, 3))
	requireCategory(t, err, SpotTaken)

	err = v.Validate(ctx, q, res(ownerA, monday, 4))
	requireCategory(t, err, WeeklyLimitReached)

	err = v.Validate(ctx, q, res(ownerA, day(2024, time.June, 17), 3))
	assert.NoError(t, err)
}

func TestValidate_SpotTakenIgnoresTimeOfDay(t *testing.T) {
	stored := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	q := &tableQueries{rows: []model.Reservation{res(ownerA, stored, 5)}}
	candidate := res(ownerB, time.Date(2024, time.June, 10, 16, 20, 0, 0, time.UTC), 5)

	err := fixedValidator().Validate(context.Background(), q, candidate)
	requireCategory(t, err, SpotTaken)

	rej, _ := AsRejection(err)
	assert.Contains(t, rej.Message, "5")
	assert.Contains(t, rej.Message, "2024-06-10")
}

func TestValidate_DailyCapacityWeekday(t *testing.T) {
	tuesday := day(2024, time.June, 11)
	full := make([]model.Reservation, 0, 7)
	for spot := 1; spot <= 7; spot++ {
		full = append(full, res(uint64(100+spot), tuesday, spot))
	}

	t.Run("seven existing is rejected", func(t *testing.T) {
		q := cannedQueries{byDate: full}
		err := fixedValidator().Validate(context.Background(), q, res(ownerA, tuesday, 7))
		requireCategory(t, err, DailyLimitReached)
	})

	t.Run("six existing is accepted", func(t *testing.T) {
		q := &tableQueries{rows: full[:6]}
		err := fixedValidator().Validate(context.Background(), q, res(ownerA, tuesday, 7))
		assert.NoError(t, err)
	})
}

func TestValidate_DailyCapacityFriday(t *testing.T) {
	friday := day(2024, time.June, 14)
	require.Equal(t, time.Friday, friday.Weekday())

	rows := make([]model.Reservation, 0, 6)
	for spot := 1; spot <= 6; spot++ {
		rows = append(rows, res(uint64(100+spot), friday, spot))
	}

	t.Run("six existing is rejected", func(t *testing.T) {
		q := &tableQueries{rows: rows}
		err := fixedValidator().Validate(context.Background(), q, res(ownerA, friday, 7))
		requireCategory(t, err, DailyLimitReached)
	})

	t.Run("five existing is accepted", func(t *testing.T) {
		q := &tableQueries{rows: rows[:5]}
		err := fixedValidator().Validate(context.Background(), q, res(ownerA, friday, 7))
		assert.NoError(t, err)
	})
}

func TestValidate_TooSoon(t *testing.T) {
	now := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.UTC)
	v := NewValidator(WithClock(func() time.Time { return now }))
	q := &tableQueries{}

	for _, booked := range []time.Time{
		day(2024, time.June, 10), // today
		day(2024, time.June, 9),  // yesterday
		day(2023, time.January, 2),
	} {
		err := v.Validate(context.Background(), q, res(ownerA, booked, 1))
		requireCategory(t, err, TooSoon)
	}

	assert.NoError(t, v.Validate(context.Background(), q, res(ownerA, day(2024, time.June, 11), 1)))
}

func TestValidate_TooSoonUsesBusinessLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	// 22:30 UTC on the 10th is already 00:30 on the 11th in Paris, so the
	// 11th counts as today.
	now := time.Date(2024, time.June, 10, 22, 30, 0, 0, time.UTC)
	v := NewValidator(WithClock(func() time.Time { return now }), WithLocation(paris))

	err = v.Validate(context.Background(), &tableQueries{}, res(ownerA, day(2024, time.June, 11), 1))
	requireCategory(t, err, TooSoon)
	assert.Equal(t, day(2024, time.June, 12), v.EarliestBookable())
}

func TestValidate_CapacityCheckedBeforeLeadTime(t *testing.T) {
	now := time.Date(2024, time.June, 20, 9, 0, 0, 0, time.UTC)
	v := NewValidator(WithClock(func() time.Time { return now }))
	past := day(2024, time.June, 14) // a Friday in the past
	rows := make([]model.Reservation, 0, 6)
	for spot := 1; spot <= 6; spot++ {
		rows = append(rows, res(uint64(100+spot), past, spot))
	}

	err := v.Validate(context.Background(), &tableQueries{rows: rows}, res(ownerA, past, 7))
	requireCategory(t, err, DailyLimitReached)
}

func TestValidate_WeeklyLimitAcrossYearBoundary(t *testing.T) {
	now := time.Date(2020, time.December, 1, 9, 0, 0, 0, time.UTC)
	v := NewValidator(WithClock(func() time.Time { return now }))

	// 2020-12-31 and 2021-01-01 are both in ISO week 53 of 2020.
	q := &tableQueries{rows: []model.Reservation{res(ownerA, day(2020, time.December, 31), 2)}}
	err := v.Validate(context.Background(), q, res(ownerA, day(2021, time.January, 1), 2))
	requireCategory(t, err, WeeklyLimitReached)

	// 2021-01-04 starts ISO week 1 of 2021.
	assert.NoError(t, v.Validate(context.Background(), q, res(ownerA, day(2021, time.January, 4), 2)))
}

func TestValidate_SameWeekNumberDifferentYearIsAllowed(t *testing.T) {
	q := &tableQueries{rows: []model.Reservation{res(ownerA, day(2023, time.June, 12), 1)}}
	err := fixedValidator().Validate(context.Background(), q, res(ownerA, day(2024, time.June, 10), 1))
	assert.NoError(t, err)
}

func TestValidate_FailFastOrder(t *testing.T) {
	monday := day(2024, time.June, 10)
	q := &tableQueries{rows: []model.Reservation{res(ownerA, monday, 3)}}

	err := fixedValidator().Validate(context.Background(), q, res(ownerA, monday, 3))
	requireCategory(t, err, SpotTaken)
	assert.Equal(t, []string{"spot"}, q.calls)
}

func TestValidate_Idempotent(t *testing.T) {
	monday := day(2024, time.June, 10)
	q := &tableQueries{rows: []model.Reservation{res(ownerA, monday, 3)}}
	v := fixedValidator()
	candidate := res(ownerA, monday, 6)

	first := v.Validate(context.Background(), q, candidate)
	second := v.Validate(context.Background(), q, candidate)
	requireCategory(t, first, WeeklyLimitReached)
	requireCategory(t, second, WeeklyLimitReached)
}

func TestValidate_QueryErrorIsNotRejection(t *testing.T) {
	boom := errors.New("connection reset")
	err := fixedValidator().Validate(context.Background(), cannedQueries{err: boom}, res(ownerA, day(2024, time.June, 10), 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	_, isRejection := AsRejection(err)
	assert.False(t, isRejection)
}

func TestDailyCapacity(t *testing.T) {
	assert.Equal(t, 7, DailyCapacity(day(2024, time.June, 10)))
	assert.Equal(t, 6, DailyCapacity(day(2024, time.June, 14)))
	assert.Equal(t, 7, DailyCapacity(day(2024, time.June, 15)))
}
