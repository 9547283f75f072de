package session

import (
	"testing"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
	"github.com/stretchr/testify/assert"
)

func tradeHours(weekday time.Weekday, start, end time.Duration) WeekHours {
	hours := WeekHours{}
	hours.Fill(weekday, start, end)
	return hours
}

func TestTableIsActive(t *testing.T) {
	table := NewTable()
	table.Set(7, 1, WindowTrade, tradeHours(time.Wednesday, 9*time.Hour, 17*time.Hour))
	table.Set(7, 1, WindowQuote, tradeHours(time.Wednesday, 0, day-time.Millisecond))

	wednesdayNoon := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	assert.True(t, table.IsActive(1, 7, wednesdayNoon))
	// bounds are inclusive
	assert.True(t, table.IsActive(1, 7, time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)))
	assert.True(t, table.IsActive(1, 7, time.Date(2024, 3, 13, 17, 0, 0, 0, time.UTC)))
	assert.False(t, table.IsActive(1, 7, time.Date(2024, 3, 13, 17, 0, 1, 0, time.UTC)))
	// wrong weekday
	assert.False(t, table.IsActive(1, 7, wednesdayNoon.Add(24*time.Hour)))
	// unknown pairs have no window and are inactive
	assert.False(t, table.IsActive(2, 7, wednesdayNoon))
	assert.False(t, table.IsActive(1, 8, wednesdayNoon))
}

func TestTableIsActiveIgnoresQuoteWindow(t *testing.T) {
	table := NewTable()
	// only the quote window is known, trading must not count as active
	table.Set(7, 1, WindowQuote, tradeHours(time.Wednesday, 0, day-time.Millisecond))

	assert.False(t, table.IsActive(1, 7, time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)))
}

func TestRowsLoadRoundTrip(t *testing.T) {
	hours := WeekHours{}
	hours.Fill(time.Tuesday, -time.Hour, 30*time.Minute)
	hours.Fill(time.Wednesday, 9*time.Hour, 17*time.Hour)

	rows := Rows(1, 7, WindowTrade, hours)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, int64(1), row.BrokerId)
		assert.Equal(t, int64(7), row.InstrumentId)
		assert.Equal(t, string(WindowTrade), row.Type)
	}
	// rows come out weekday-ordered with a per-weekday index
	assert.Equal(t, int(time.Monday), rows[0].Weekday)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, (23 * time.Hour).Milliseconds(), rows[0].Start)
	assert.Equal(t, (day - time.Millisecond).Milliseconds(), rows[0].End)

	table := NewTable()
	table.Load(rows)

	tuesday := time.Date(2024, 3, 12, 0, 15, 0, 0, time.UTC)
	monday := time.Date(2024, 3, 11, 23, 30, 0, 0, time.UTC)
	assert.True(t, table.IsActive(1, 7, tuesday))
	assert.True(t, table.IsActive(1, 7, monday))
	assert.False(t, table.IsActive(1, 7, time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC)))
}

func TestLoadReplacesPreviousContents(t *testing.T) {
	table := NewTable()
	table.Set(7, 1, WindowTrade, tradeHours(time.Wednesday, 0, day-time.Millisecond))

	table.Load([]entity.Session{
		{BrokerId: 2, InstrumentId: 9, Type: string(WindowTrade), Weekday: int(time.Monday), Start: 0, End: (day - time.Millisecond).Milliseconds()},
	})

	wednesdayNoon := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	mondayNoon := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	assert.False(t, table.IsActive(1, 7, wednesdayNoon))
	assert.True(t, table.IsActive(2, 9, mondayNoon))
}
