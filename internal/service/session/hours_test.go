package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFillSplitsSpillover(t *testing.T) {
	testCases := []struct {
		name    string
		weekday time.Weekday
		start   time.Duration
		end     time.Duration
		want    WeekHours
	}{
		{
			name:    "plain interval inside the day",
			weekday: time.Tuesday,
			start:   9 * time.Hour,
			end:     17 * time.Hour,
			want: WeekHours{
				time.Tuesday: {{Start: 9 * time.Hour, End: 17 * time.Hour}},
			},
		},
		{
			name:    "end at 24:00 clamps to the last ms of the day",
			weekday: time.Tuesday,
			start:   0,
			end:     day,
			want: WeekHours{
				time.Tuesday: {{Start: 0, End: day - time.Millisecond}},
			},
		},
		{
			name:    "negative start spills into the previous day",
			weekday: time.Tuesday,
			start:   -time.Hour,
			end:     30 * time.Minute,
			want: WeekHours{
				time.Monday:  {{Start: 23 * time.Hour, End: day - time.Millisecond}},
				time.Tuesday: {{Start: 0, End: 30 * time.Minute}},
			},
		},
		{
			name:    "end past midnight spills into the next day",
			weekday: time.Friday,
			start:   22 * time.Hour,
			end:     day + 2*time.Hour,
			want: WeekHours{
				time.Friday:   {{Start: 22 * time.Hour, End: day - time.Millisecond}},
				time.Saturday: {{Start: 0, End: 2 * time.Hour}},
			},
		},
		{
			name:    "fully negative interval lands on the previous day",
			weekday: time.Sunday,
			start:   -2 * time.Hour,
			end:     -time.Hour,
			want: WeekHours{
				time.Saturday: {{Start: 22 * time.Hour, End: 23 * time.Hour}},
			},
		},
		{
			name:    "fully past midnight lands on the next day",
			weekday: time.Saturday,
			start:   day + time.Hour,
			end:     day + 2*time.Hour,
			want: WeekHours{
				time.Sunday: {{Start: time.Hour, End: 2 * time.Hour}},
			},
		},
		{
			name:    "negative start wraps sunday to saturday",
			weekday: time.Sunday,
			start:   -time.Hour,
			end:     time.Hour,
			want: WeekHours{
				time.Saturday: {{Start: 23 * time.Hour, End: day - time.Millisecond}},
				time.Sunday:   {{Start: 0, End: time.Hour}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hours := WeekHours{}
			hours.Fill(tc.weekday, tc.start, tc.end)
			assert.Equal(t, tc.want, hours)
		})
	}
}

func TestParseHoursAppliesGmtOffset(t *testing.T) {
	spans := []WeekdaySpan{
		{Weekday: int(time.Tuesday), Start: 0, End: 2 * time.Hour.Milliseconds()},
	}

	// a -3h broker offset moves the whole window onto the previous day
	hours := ParseHours(spans, -3*time.Hour)
	assert.Equal(t, WeekHours{
		time.Monday: {{Start: 21 * time.Hour, End: 23 * time.Hour}},
	}, hours)

	// a -1h offset splits it across midnight instead
	hours = ParseHours(spans, -time.Hour)
	assert.Equal(t, WeekHours{
		time.Monday:  {{Start: 23 * time.Hour, End: day - time.Millisecond}},
		time.Tuesday: {{Start: 0, End: time.Hour}},
	}, hours)
}

func TestContainsBoundsInclusive(t *testing.T) {
	hours := WeekHours{}
	hours.Fill(time.Wednesday, 9*time.Hour, 17*time.Hour)

	assert.True(t, hours.Contains(time.Wednesday, 9*time.Hour))
	assert.True(t, hours.Contains(time.Wednesday, 17*time.Hour))
	assert.True(t, hours.Contains(time.Wednesday, 12*time.Hour))
	assert.False(t, hours.Contains(time.Wednesday, 17*time.Hour+time.Millisecond))
	assert.False(t, hours.Contains(time.Wednesday, 9*time.Hour-time.Millisecond))
	assert.False(t, hours.Contains(time.Thursday, 12*time.Hour))
}
