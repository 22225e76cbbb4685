package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDay(t *testing.T) {
	in := time.Date(2026, time.September, 3, 17, 45, 12, 999, time.FixedZone("X", 3*3600))
	got := Day(in)
	assert.Equal(t, time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, Day(got)) // idempotent
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)

	days := DaysBetween(from, to)
	assert.Len(t, days, 3) // three nights, check-out day excluded
	assert.Equal(t, from, days[0])
	assert.Equal(t, to.AddDate(0, 0, -1), days[2])
}

func TestDaysBetweenEmptyAndInverted(t *testing.T) {
	d := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, DaysBetween(d, d))
	assert.Nil(t, DaysBetween(d.AddDate(0, 0, 2), d))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2026, time.September, 1, 23, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.September, 2, 1, 0, 0, 0, time.UTC)
	days := DaysBetween(from, to)
	assert.Len(t, days, 1)
}
