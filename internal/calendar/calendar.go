// Package calendar knows which days the US equity market (NYSE/Nasdaq) is open.
package calendar

import "time"

// IsTradingDay returns true if the US equity market is open on d.
// It excludes Saturdays, Sundays, and full-day NYSE holidays (with weekend observance).
func IsTradingDay(d time.Time) bool {
	d = truncateToDate(d)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := holidays(d.Year())[d]
	return !holiday
}

// AddTradingDays moves n trading days away from d (n < 0 walks backwards).
// d itself is never counted. n == 0 returns d truncated to its date.
func AddTradingDays(d time.Time, n int) time.Time {
	d = truncateToDate(d)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if IsTradingDay(d) {
			n--
		}
	}
	return d
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// holidays returns the NYSE full-day closures for a year.
//
// Fixed-date holidays falling on Saturday are observed the Friday before, on Sunday
// the Monday after. New Year's Day on a Saturday is not observed (NYSE rule 7.2).
func holidays(year int) map[time.Time]struct{} {
	out := make(map[time.Time]struct{}, 10)
	add := func(t time.Time) { out[t] = struct{}{} }

	if ny := date(year, time.January, 1); ny.Weekday() != time.Saturday {
		add(observed(ny))
	}
	add(nthWeekday(year, time.January, time.Monday, 3))  // Martin Luther King Jr. Day
	add(nthWeekday(year, time.February, time.Monday, 3)) // Washington's Birthday
	add(easterSunday(year).AddDate(0, 0, -2))            // Good Friday
	add(lastWeekday(year, time.May, time.Monday))        // Memorial Day
	if year >= 2022 {
		add(observed(date(year, time.June, 19))) // Juneteenth
	}
	add(observed(date(year, time.July, 4)))
	add(nthWeekday(year, time.September, time.Monday, 1))  // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4)) // Thanksgiving
	add(observed(date(year, time.December, 25)))
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, m time.Month, wd time.Weekday, n int) time.Time {
	d := date(year, m, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

func lastWeekday(year int, m time.Month, wd time.Weekday) time.Time {
	d := date(year, m+1, 1).AddDate(0, 0, -1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return date(year, time.Month(month), day)
}
