package dates

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalizedPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func TestNormalize(t *testing.T) {
	berlin := time.FixedZone("CET", 60*60)

	cases := []struct {
		name  string
		input DateValue
		want  string
	}{
		{"plain date", Raw("2025-03-01"), "2025-03-01"},
		{"padded whitespace", Raw("  2025-03-01 "), "2025-03-01"},
		{"iso utc", Raw("2025-03-01T14:00:00Z"), "2025-03-01"},
		{"iso with offset keeps own calendar day", Raw("2025-03-01T23:30:00-05:00"), "2025-03-01"},
		{"iso fractional", Raw("2025-03-01T00:00:00.000Z"), "2025-03-01"},
		{"iso without zone", Raw("2025-03-01T14:00"), "2025-03-01"},
		{"native uses own location", Native(time.Date(2025, 3, 1, 0, 30, 0, 0, berlin)), "2025-03-01"},
		{"store timestamp uses utc", StoreTimestamp(time.Date(2025, 3, 1, 0, 30, 0, 0, berlin)), "2025-02-28"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "2025-13-01", "2025-02-30", "01/03/2025", "2025-3-1"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Normalize(Raw(raw))
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}

	_, err := Normalize(Native(time.Time{}))
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []DateValue{
		Raw("2024-02-29"),
		Raw("2025-12-31T23:59:59Z"),
		Native(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		StoreTimestamp(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)),
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(Raw(once))
		require.NoError(t, err)

		assert.Equal(t, once, twice)
		assert.Regexp(t, normalizedPattern, once)
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, KindRaw, v.Kind())

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	v, err = FromAny(ts)
	require.NoError(t, err)
	assert.Equal(t, KindStoreTimestamp, v.Kind())
	assert.Equal(t, "2025-03-01", MustNormalize(v))

	_, err = FromAny(42)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestValidateTime(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "14:00", "23:59"} {
		assert.NoError(t, ValidateTime(ok), ok)
	}
	for _, bad := range []string{"24:00", "9:30", "12:60", "12:00:00", "", "noon"} {
		assert.ErrorIs(t, ValidateTime(bad), ErrInvalidTime, bad)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2025-02-22", 7)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", got)

	_, err = AddDays("not-a-date", 7)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare("2025-02-15", "18:00", "2025-03-01", "14:00"))
	assert.Negative(t, Compare("2025-03-01", "09:00", "2025-03-01", "14:00"))
	assert.Zero(t, Compare("2025-03-01", "14:00", "2025-03-01", "14:00"))
	assert.Positive(t, Compare("2025-03-02", "00:00", "2025-03-01", "23:59"))
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-01", Today(now, nil))
	assert.Equal(t, "2025-03-02", Today(now, time.FixedZone("CET", 60*60)))
}
