package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	got, err := Date("2027-06-12", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 6, 12, 0, 0, 0, 0, loc), got)

	for _, raw := range []string{"", "12.06.2027", "2027-13-01", "2027-06-12T10:00"} {
		_, err := Date(raw, loc)
		assert.Error(t, err, raw)
	}
}

func TestDateTime(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)

	testCases := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"rfc3339 utc", "2027-06-12T14:00:00Z", time.Date(2027, 6, 12, 14, 0, 0, 0, time.UTC), false},
		{"rfc3339 offset", "2027-06-12T14:00:00+02:00", time.Date(2027, 6, 12, 12, 0, 0, 0, time.UTC), false},
		{"datetime-local", "2027-06-12T14:00", time.Date(2027, 6, 12, 14, 0, 0, 0, loc), false},
		{"with seconds", "2027-06-12T14:00:30", time.Date(2027, 6, 12, 14, 0, 30, 0, loc), false},
		{"space separated", " 2027-06-12 14:00 ", time.Date(2027, 6, 12, 14, 0, 0, 0, loc), false},
		{"date only", "2027-06-12", time.Time{}, true},
		{"garbage", "tomorrow", time.Time{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DateTime(tc.input, loc)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "got %v", got)
		})
	}
}

func TestClock(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"11:00", "11:00", false},
		{"9:30", "09:30", false},
		{"23:59", "23:59", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
	}

	for _, tc := range testCases {
		got, err := Clock(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, got)
	}
}

func TestID(t *testing.T) {
	id, err := ID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := ID(raw)
		assert.Error(t, err, raw)
	}
}
