package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientDate_Valid(t *testing.T) {
	got, err := ParseClientDate("15/03/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), got)
}

func TestParseClientDate_PinnedToNoonUTC(t *testing.T) {
	got, err := ParseClientDate("01/01/2025")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseClientDate_EmptyIsSoftNull(t *testing.T) {
	got, err := ParseClientDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseClientDate("   ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseClientDate_Malformed(t *testing.T) {
	for _, s := range []string{"2025-03-15", "15/03", "aa/bb/cccc", "32/01/2025", "31/02/2025", "15/13/2025"} {
		_, err := ParseClientDate(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseChannelDate_Layouts(t *testing.T) {
	want := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-06-10",
		"2025-06-10T08:30:00Z",
		"2025-06-10T08:30:00",
		"2025-06-10 08:30:00",
	} {
		got, err := ParseChannelDate(s)
		require.NoError(t, err, "input %q", s)
		assert.Equal(t, want, got, "input %q", s)
	}
}

func TestParseChannelDate_EmptyIsSoftNull(t *testing.T) {
	got, err := ParseChannelDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseChannelDate_Malformed(t *testing.T) {
	_, err := ParseChannelDate("10/06/2025")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 1, d, 12, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 0, DaysBetween(day(5), day(5)))
	assert.Equal(t, 1, DaysBetween(day(5), day(6)))
	assert.Equal(t, -1, DaysBetween(day(6), day(5)))
	assert.Equal(t, 30, DaysBetween(day(1), day(31)))
}

func TestDaysBetween_CeilingSubDay(t *testing.T) {
	a := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)

	// Same calendar day, b a few hours later — still counts as one day.
	assert.Equal(t, 1, DaysBetween(a, b))
}
