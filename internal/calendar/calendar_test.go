package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeek_YearBoundaries(t *testing.T) {
	cases := []struct {
		name string
		day  time.Time
		want Week
	}{
		{"mid year monday", date(2024, time.June, 10), Week{2024, 24}},
		{"mid year sunday", date(2024, time.June, 16), Week{2024, 24}},
		{"next monday", date(2024, time.June, 17), Week{2024, 25}},
		{"dec 31 2020 is week 53", date(2020, time.December, 31), Week{2020, 53}},
		{"jan 1 2021 still in 2020 week 53", date(2021, time.January, 1), Week{2020, 53}},
		{"jan 3 2021 still in 2020 week 53", date(2021, time.January, 3), Week{2020, 53}},
		{"jan 4 2021 starts week 1", date(2021, time.January, 4), Week{2021, 1}},
		{"dec 30 2024 belongs to 2025", date(2024, time.December, 30), Week{2025, 1}},
		{"jan 1 2023 belongs to 2022 week 52", date(2023, time.January, 1), Week{2022, 52}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ISOWeek(tc.day))
		})
	}
}

func TestSameISOWeek_AcrossCalendarYears(t *testing.T) {
	// 2020-12-31 and 2021-01-01 differ in calendar year but share ISO week 53/2020.
	assert.True(t, SameISOWeek(date(2020, time.December, 31), date(2021, time.January, 1)))
	// Same week number in different ISO years must not match.
	assert.False(t, SameISOWeek(date(2023, time.June, 12), date(2024, time.June, 10)))
}

func TestWeek_String(t *testing.T) {
	assert.Equal(t, "2024-W24", Week{2024, 24}.String())
	assert.Equal(t, "2025-W01", Week{2025, 1}.String())
}

func TestDay_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, time.June, 10, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, time.June, 10, 23, 59, 59, 0, time.UTC)
	assert.True(t, SameDay(morning, evening))
	assert.Equal(t, date(2024, time.June, 10), Day(evening))
}

func TestDay_UsesWallClockOfLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	// 00:30 in Paris is still the previous day in UTC.
	late := time.Date(2024, time.June, 11, 0, 30, 0, 0, paris)
	assert.Equal(t, date(2024, time.June, 11), Day(late))
}

func TestTomorrow(t *testing.T) {
	now := time.Date(2024, time.December, 31, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2025, time.January, 1), Tomorrow(now))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 10), d)
	assert.Equal(t, "2024-06-10", FormatDay(d))

	_, err = ParseDay("10/06/2024")
	assert.Error(t, err)
}
