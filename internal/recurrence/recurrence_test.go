package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	for _, s := range []string{"weekly", "biweekly", "monthly"} {
		f, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, Frequency(s), f)
	}

	for _, s := range []string{"", "daily", "WEEKLY", "fortnightly"} {
		_, err := Parse(s)
		assert.Error(t, err, "Parse(%q)", s)
	}
}

func TestExpandWeekly(t *testing.T) {
	start := date(2024, time.February, 5)
	got, err := Expand(start, 6, Weekly)
	require.NoError(t, err)
	require.Len(t, got, 6)

	assert.True(t, got[0].Equal(start))
	for i := 1; i < len(got); i++ {
		assert.Equal(t, 7*24*time.Hour, got[i].Sub(got[i-1]), "delta at %d", i)
	}
}

func TestExpandBiweekly(t *testing.T) {
	start := date(2024, time.February, 5)
	got, err := Expand(start, 5, Biweekly)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.True(t, got[0].Equal(start))
	for i := 1; i < len(got); i++ {
		assert.Equal(t, 14*24*time.Hour, got[i].Sub(got[i-1]), "delta at %d", i)
	}
}

func TestExpandMonthly(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  []time.Time
	}{
		{
			// 2024-02-05 is the 1st Monday of February.
			name:  "first monday sequence",
			start: date(2024, time.February, 5),
			want: []time.Time{
				date(2024, time.February, 5),
				date(2024, time.March, 4),
				date(2024, time.April, 1),
				date(2024, time.May, 6),
			},
		},
		{
			// 2024-04-29 is the 5th Monday of April; May has no 5th
			// Monday, so the engine falls back to the 4th.
			name:  "fifth occurrence falls back",
			start: date(2024, time.April, 29),
			want: []time.Time{
				date(2024, time.April, 29),
				date(2024, time.May, 27),
			},
		},
		{
			// Year boundary: 5th Monday of December 2024.
			name:  "december rollover with fallback",
			start: date(2024, time.December, 30),
			want: []time.Time{
				date(2024, time.December, 30),
				date(2025, time.January, 27),
			},
		},
		{
			// 2024-02-14 is the 2nd Wednesday of February.
			name:  "second wednesday sequence",
			start: date(2024, time.February, 14),
			want: []time.Time{
				date(2024, time.February, 14),
				date(2024, time.March, 13),
				date(2024, time.April, 10),
				date(2024, time.May, 8),
				date(2024, time.June, 12),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.start, len(tt.want), Monthly)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, got[i].Equal(tt.want[i]),
					"element %d: got %v, want %v", i, got[i], tt.want[i])
			}
		})
	}
}

func TestExpandMonthlyKeepsWeekday(t *testing.T) {
	start := date(2024, time.January, 9) // 2nd Tuesday
	got, err := Expand(start, 24, Monthly)
	require.NoError(t, err)

	for i, ts := range got {
		assert.Equal(t, time.Tuesday, ts.Weekday(), "element %d", i)
	}
}

func TestExpandStrictlyIncreasing(t *testing.T) {
	for _, freq := range []Frequency{Weekly, Biweekly, Monthly} {
		got, err := Expand(date(2024, time.March, 29), 36, freq)
		require.NoError(t, err)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].After(got[i-1]),
				"%s element %d not after predecessor", freq, i)
		}
	}
}

func TestExpandPreservesClockAndLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	start := time.Date(2024, time.February, 5, 14, 30, 0, 0, loc)
	got, err := Expand(start, 4, Monthly)
	require.NoError(t, err)

	for i, ts := range got {
		assert.Equal(t, 14, ts.Hour(), "element %d", i)
		assert.Equal(t, 30, ts.Minute(), "element %d", i)
		assert.Equal(t, loc, ts.Location(), "element %d", i)
	}
}

func TestExpandSingleSession(t *testing.T) {
	start := date(2024, time.July, 1)
	got, err := Expand(start, 1, Monthly)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(start))
}

func TestExpandErrors(t *testing.T) {
	_, err := Expand(date(2024, time.July, 1), 0, Weekly)
	assert.Error(t, err)

	_, err = Expand(date(2024, time.July, 1), -3, Weekly)
	assert.Error(t, err)

	_, err = Expand(date(2024, time.July, 1), 4, Frequency("daily"))
	assert.Error(t, err)
}
