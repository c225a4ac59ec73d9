// Package dates implements the calendar arithmetic behind the life grid:
// week indices relative to a birth date, age breakdown, ISO week numbering
// and user date parsing. All functions work at calendar-day resolution in
// UTC to avoid timezone-boundary drift; times of day are ignored.
package dates

import (
	"fmt"
	"strconv"
	"time"

	"lifeweeks/internal/common"
)

const daysPerWeek = 7

// DayOf truncates t to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b. Negative if
// b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

// WeeksBetween returns the number of full 7-day periods elapsed between
// birth and asOf. Never negative: if asOf is before birth the result is 0.
func WeeksBetween(birth, asOf time.Time) int {
	days := DaysBetween(birth, asOf)
	if days < 0 {
		return 0
	}
	return days / daysPerWeek
}

// WeekIndex maps a mark date to its zero-based grid cell relative to birth,
// clamped to >= 0.
func WeekIndex(birth, date time.Time) int {
	return WeeksBetween(birth, date)
}

// DateForWeekIndex returns the first day of the given grid cell.
func DateForWeekIndex(birth time.Time, weekIndex int) time.Time {
	return AddDays(birth, weekIndex*daysPerWeek)
}

// AddDays adds n calendar days to t, staying at day resolution.
func AddDays(t time.Time, n int) time.Time {
	return DayOf(t).AddDate(0, 0, n)
}

// Age is a calendar-accurate breakdown of elapsed time.
type Age struct {
	Years  int
	Months int
	Days   int
}

// AgeBreakdown decomposes the interval from birth to asOf into whole years,
// months and days using borrow arithmetic: a negative day difference borrows
// the length of the previous month, a negative month difference borrows 12
// from the years.
func AgeBreakdown(birth, asOf time.Time) Age {
	b := DayOf(birth)
	n := DayOf(asOf)

	years := n.Year() - b.Year()
	months := int(n.Month()) - int(b.Month())
	days := n.Day() - b.Day()

	if days < 0 {
		months--
		// last day of the month preceding asOf
		prev := time.Date(n.Year(), n.Month(), 0, 0, 0, 0, 0, time.UTC)
		days += prev.Day()
	}
	if months < 0 {
		years--
		months += 12
	}
	return Age{Years: years, Months: months, Days: days}
}

// ISOWeek returns the ISO-8601 week number (1..53) for the given date: the
// week containing the year's first Thursday is week 1.
func ISOWeek(t time.Time) int {
	_, week := DayOf(t).ISOWeek()
	return week
}

// WeeksInYear reports how many ISO weeks the given year has (52 or 53),
// derived from the ISO week of December 28th, which always falls in the
// year's last ISO week.
func WeeksInYear(year int) int {
	return ISOWeek(time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC))
}

// LifeStats summarizes grid occupancy for the status display.
type LifeStats struct {
	LivedWeeks     int
	RemainingWeeks int
	TotalWeeks     int
	Percent        float64
}

// Stats computes lived/remaining/total weeks against an expectancy horizon of
// expectancyYears*52 cells (the poster model). The current week is excluded
// from the remaining count, and nothing goes negative.
func Stats(birth time.Time, expectancyYears int, asOf time.Time) LifeStats {
	total := expectancyYears * 52
	lived := WeeksBetween(birth, asOf)
	if lived > total {
		lived = total
	}
	remaining := total - lived - 1
	if remaining < 0 {
		remaining = 0
	}
	percent := 0.0
	if total > 0 {
		percent = float64(lived) / float64(total) * 100
		if percent > 100 {
			percent = 100
		}
	}
	return LifeStats{LivedWeeks: lived, RemainingWeeks: remaining, TotalWeeks: total, Percent: percent}
}

// ParseUserDate validates a day/month/year triple entered by the user and
// returns the normalized calendar date. It rejects syntactically invalid
// dates, dates in the future relative to now, and, when maxAgeYears > 0,
// dates implying an age strictly greater than the bound. All rejections are
// reported as common.ErrorInvalidDate or common.ErrorOutOfRange, never a
// panic.
func ParseUserDate(day, month, year string, maxAgeYears int, now time.Time) (time.Time, error) {
	d, err1 := strconv.Atoi(day)
	m, err2 := strconv.Atoi(month)
	y, err3 := strconv.Atoi(year)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("%w: not a number", common.ErrorInvalidDate)
	}

	if y < 1900 || y > 9999 || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", common.ErrorInvalidDate, y, m, d)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflowing components (Feb 31 -> Mar 3);
	// a real calendar date must survive the round trip unchanged.
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", common.ErrorInvalidDate, y, m, d)
	}

	today := DayOf(now)
	if t.After(today) {
		return time.Time{}, fmt.Errorf("%w: date is in the future", common.ErrorInvalidDate)
	}

	if maxAgeYears > 0 {
		earliest := today.AddDate(-maxAgeYears, 0, 0)
		if t.Before(earliest) {
			return time.Time{}, fmt.Errorf("%w: age exceeds %d years", common.ErrorOutOfRange, maxAgeYears)
		}
	}

	return t, nil
}

// FormatISO renders a date as YYYY-MM-DD, the wire and storage format.
func FormatISO(t time.Time) string {
	return DayOf(t).Format("2006-01-02")
}

// ParseISO parses a YYYY-MM-DD string.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", common.ErrorInvalidDate, s)
	}
	return t, nil
}
