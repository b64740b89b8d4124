package policy

import (
	"testing"
	"time"

	"auravindex/pkg/config"
	apperrors "auravindex/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T) Config {
	t.Helper()
	p, err := FromConfig(&config.Config{
		MaxRenewalsPerBooking:    2,
		MaxWindowDays:            15,
		PostRenewalExtensionDays: 7,
		MinOccupancy:             1,
		MaxOccupancy:             10,
		WeekdayOperatingHours:    "07:00-20:00",
		SaturdayOperatingHours:   "08:00-12:00",
		OperatingTimezone:        "UTC",
	})
	require.NoError(t, err)
	return p
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseHoursRange(t *testing.T) {
	h, err := ParseHoursRange("07:30-20:00")
	require.NoError(t, err)
	assert.Equal(t, HoursRange{Open: 450, Close: 1200}, h)
	assert.Equal(t, "07:30-20:00", h.String())

	for _, bad := range []string{"", "07:00", "7-20", "20:00-07:00", "25:00-26:00", "07:60-08:00"} {
		_, err := ParseHoursRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestDefaultWindowEnd(t *testing.T) {
	p := testPolicy(t)
	now := at("2026-10-19T10:00:00Z")
	assert.Equal(t, at("2026-11-03T10:00:00Z"), p.DefaultWindowEnd(now))
}

func TestValidateWindow(t *testing.T) {
	p := testPolicy(t)
	start := at("2026-10-19T10:00:00Z")

	assert.NoError(t, p.ValidateWindow(start, start.Add(15*24*time.Hour)))

	err := p.ValidateWindow(start, start.Add(15*24*time.Hour+time.Second))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeWindowTooLong))
}

func TestValidateRenewal(t *testing.T) {
	p := testPolicy(t)

	assert.NoError(t, p.ValidateRenewal(0))
	assert.NoError(t, p.ValidateRenewal(1))

	err := p.ValidateRenewal(2)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRenewalLimitExceeded))

	p.MaxRenewals = 0
	assert.True(t, apperrors.HasCode(p.ValidateRenewal(0), apperrors.CodeRenewalLimitExceeded))
}

func TestRenewedWindowEnd_IsRelativeToExistingEnd(t *testing.T) {
	p := testPolicy(t)
	end := at("2020-01-01T00:00:00Z")
	assert.Equal(t, at("2020-01-08T00:00:00Z"), p.RenewedWindowEnd(end))
	assert.Equal(t, at("2020-01-15T00:00:00Z"), p.RenewedWindowEnd(p.RenewedWindowEnd(end)))
}

func TestValidateOccupancy(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		people, lo, hi int
		ok             bool
	}{
		{1, 1, 10, true},
		{10, 1, 10, true},
		{0, 1, 10, false},
		{11, 1, 10, false},
		{4, 4, 4, true},
	}
	for _, tt := range tests {
		err := p.ValidateOccupancy(tt.people, tt.lo, tt.hi)
		if tt.ok {
			assert.NoError(t, err)
		} else {
			assert.True(t, apperrors.HasCode(err, apperrors.CodeOccupancyUnauthorized))
		}
	}
}

func TestOccupancyBounds(t *testing.T) {
	p := testPolicy(t)

	lo, hi := p.OccupancyBounds(0, 0)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 10, hi)

	lo, hi = p.OccupancyBounds(2, 6)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 6, hi)
}

func TestValidateWithinOperatingHours(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		name  string
		start string
		end   string
		ok    bool
	}{
		{"weekday inside", "2026-10-19T09:00:00Z", "2026-10-19T11:00:00Z", true},
		{"weekday full day", "2026-10-19T07:00:00Z", "2026-10-19T20:00:00Z", true},
		{"weekday too early", "2026-10-19T06:30:00Z", "2026-10-19T08:00:00Z", false},
		{"weekday too late", "2026-10-19T19:00:00Z", "2026-10-19T20:30:00Z", false},
		{"saturday inside", "2026-10-24T08:00:00Z", "2026-10-24T12:00:00Z", true},
		{"saturday before opening", "2026-10-24T06:00:00Z", "2026-10-24T07:30:00Z", false},
		{"saturday afternoon", "2026-10-24T13:00:00Z", "2026-10-24T14:00:00Z", false},
		{"sunday", "2026-10-25T10:00:00Z", "2026-10-25T11:00:00Z", false},
		{"spans two days", "2026-10-19T19:00:00Z", "2026-10-20T08:00:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateWithinOperatingHours(at(tt.start), at(tt.end))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeOutsideOperatingHours), "got %v", err)
		})
	}
}

func TestValidateWithinOperatingHours_UsesConfiguredZone(t *testing.T) {
	p := testPolicy(t)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	p.Location = loc

	// 12:00-13:00 UTC is 08:00-09:00 in New York during daylight time
	assert.NoError(t, p.ValidateWithinOperatingHours(at("2026-10-19T12:00:00Z"), at("2026-10-19T13:00:00Z")))
	// 10:00 UTC is 06:00 local, before opening
	assert.Error(t, p.ValidateWithinOperatingHours(at("2026-10-19T10:00:00Z"), at("2026-10-19T12:00:00Z")))
}

func TestValidateChronology(t *testing.T) {
	p := testPolicy(t)
	start := at("2026-10-19T10:00:00Z")

	assert.NoError(t, p.ValidateChronology(start, start.Add(time.Minute)))
	assert.True(t, apperrors.HasCode(p.ValidateChronology(start, start), apperrors.CodeEndBeforeStart))
	assert.True(t, apperrors.HasCode(p.ValidateChronology(start, start.Add(-time.Minute)), apperrors.CodeEndBeforeStart))
}

func TestFromConfig_RejectsBadInput(t *testing.T) {
	_, err := FromConfig(&config.Config{
		WeekdayOperatingHours:  "bad",
		SaturdayOperatingHours: "08:00-12:00",
		OperatingTimezone:      "UTC",
	})
	assert.Error(t, err)

	_, err = FromConfig(&config.Config{
		WeekdayOperatingHours:  "07:00-20:00",
		SaturdayOperatingHours: "08:00-12:00",
		OperatingTimezone:      "Mars/Olympus",
	})
	assert.Error(t, err)
}
