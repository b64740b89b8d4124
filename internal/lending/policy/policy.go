// Package policy holds the pure booking rules: window length, renewals,
// occupancy and operating hours. Nothing here touches storage.
package policy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"auravindex/pkg/config"
	apperrors "auravindex/pkg/errors"
)

const day = 24 * time.Hour

// HoursRange is a local [Open, Close] range expressed as minutes since midnight.
type HoursRange struct {
	Open  int
	Close int
}

func (h HoursRange) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", h.Open/60, h.Open%60, h.Close/60, h.Close%60)
}

// ParseHoursRange parses "HH:MM-HH:MM".
func ParseHoursRange(s string) (HoursRange, error) {
	openStr, closeStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return HoursRange{}, fmt.Errorf("invalid hours range %q", s)
	}
	open, err := parseClock(openStr)
	if err != nil {
		return HoursRange{}, fmt.Errorf("invalid hours range %q: %w", s, err)
	}
	closing, err := parseClock(closeStr)
	if err != nil {
		return HoursRange{}, fmt.Errorf("invalid hours range %q: %w", s, err)
	}
	if closing <= open {
		return HoursRange{}, fmt.Errorf("invalid hours range %q: close must be after open", s)
	}
	return HoursRange{Open: open, Close: closing}, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute %q", mm)
	}
	return h*60 + m, nil
}

type Config struct {
	MaxRenewals          int
	MaxWindowDays        int
	RenewalExtensionDays int
	MinOccupancy         int
	MaxOccupancy         int
	WeekdayHours         HoursRange
	SaturdayHours        HoursRange
	Location             *time.Location
}

// FromConfig builds the policy from the service configuration, which has already validated the formats.
func FromConfig(cfg *config.Config) (Config, error) {
	weekday, err := ParseHoursRange(cfg.WeekdayOperatingHours)
	if err != nil {
		return Config{}, err
	}
	saturday, err := ParseHoursRange(cfg.SaturdayOperatingHours)
	if err != nil {
		return Config{}, err
	}
	loc, err := time.LoadLocation(cfg.OperatingTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid operating timezone: %w", err)
	}
	return Config{
		MaxRenewals:          cfg.MaxRenewalsPerBooking,
		MaxWindowDays:        cfg.MaxWindowDays,
		RenewalExtensionDays: cfg.PostRenewalExtensionDays,
		MinOccupancy:         cfg.MinOccupancy,
		MaxOccupancy:         cfg.MaxOccupancy,
		WeekdayHours:         weekday,
		SaturdayHours:        saturday,
		Location:             loc,
	}, nil
}

func (c Config) maxWindow() time.Duration {
	return time.Duration(c.MaxWindowDays) * day
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// DefaultWindowEnd is the return date of a booking opened at now with no explicit end.
func (c Config) DefaultWindowEnd(now time.Time) time.Time {
	return now.Add(c.maxWindow())
}

func (c Config) ValidateWindow(start, end time.Time) error {
	if end.After(start.Add(c.maxWindow())) {
		return apperrors.WindowTooLong(c.MaxWindowDays)
	}
	return nil
}

// ValidateRenewal rejects when the attempted count (current+1) exceeds the maximum.
func (c Config) ValidateRenewal(currentCount int) error {
	if currentCount+1 > c.MaxRenewals {
		return apperrors.RenewalLimitExceeded(c.MaxRenewals)
	}
	return nil
}

// RenewedWindowEnd extends from the existing end, never from now.
func (c Config) RenewedWindowEnd(current time.Time) time.Time {
	return current.Add(time.Duration(c.RenewalExtensionDays) * day)
}

// OccupancyBounds returns the resource's own bounds, or the configured ones when unset.
func (c Config) OccupancyBounds(resourceMin, resourceMax int) (int, int) {
	if resourceMin == 0 && resourceMax == 0 {
		return c.MinOccupancy, c.MaxOccupancy
	}
	return resourceMin, resourceMax
}

func (c Config) ValidateOccupancy(people, minPeople, maxPeople int) error {
	if people < minPeople || people > maxPeople {
		return apperrors.OccupancyUnauthorized(people, minPeople, maxPeople)
	}
	return nil
}

func (c Config) ValidateWithinOperatingHours(start, end time.Time) error {
	loc := c.location()
	ls, le := start.In(loc), end.In(loc)

	if ls.Year() != le.Year() || ls.YearDay() != le.YearDay() {
		return apperrors.OutsideOperatingHours("start and end must fall on the same day")
	}

	var hours HoursRange
	switch ls.Weekday() {
	case time.Sunday:
		return apperrors.OutsideOperatingHours("closed on Sundays")
	case time.Saturday:
		hours = c.SaturdayHours
	default:
		hours = c.WeekdayHours
	}

	midnight := time.Date(ls.Year(), ls.Month(), ls.Day(), 0, 0, 0, 0, loc)
	opens := midnight.Add(time.Duration(hours.Open) * time.Minute)
	closes := midnight.Add(time.Duration(hours.Close) * time.Minute)

	if ls.Before(opens) || le.After(closes) {
		return apperrors.OutsideOperatingHours(fmt.Sprintf("%s hours are %s", ls.Weekday(), hours))
	}
	return nil
}

func (c Config) ValidateChronology(start, end time.Time) error {
	if !end.After(start) {
		return apperrors.EndBeforeStart()
	}
	return nil
}
