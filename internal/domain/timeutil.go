package domain

import "time"

// ToLocal converts a UTC instant to the wall-clock time in tz, returning
// the converted time.Time (which carries both the local date and
// time-of-day). Returns a RosterValidation error naming tz if tz cannot be
// resolved; callers return it as is, without adding an airport code.
func ToLocal(instant time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, Wrap(KindRosterValidation, "unresolvable timezone: "+tz, err)
	}
	return instant.In(loc), nil
}

// localHourOfDay returns the fractional hour-of-day (0.0-24.0) of t, which
// must already be in the target location (i.e. the result of ToLocal).
func localHourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0
}

// inWOCL reports whether the local wall-clock time t (already converted to
// local) falls within [woclStartHour, woclEndHour) — 02:00 inclusive,
// 06:00 exclusive per spec.md §4.1 and the GLOSSARY.
func inWOCL(t time.Time, woclStartHour, woclEndHour float64) bool {
	h := localHourOfDay(t)
	return h >= woclStartHour && h < woclEndHour
}

// WOCLOverlapHours sums the minutes of [startUTC, endUTC) that fall within
// 02:00-05:59 local time on any date, in homeTZ, returned in hours. Walks
// the interval in 1-minute steps so DST transitions (spring-forward,
// fall-back) and the 02:00 wrap into the previous day are handled exactly
// as the local clock presents them — no separate calendar-day bookkeeping
// that could double count or miss an hour across a transition.
func WOCLOverlapHours(startUTC, endUTC time.Time, homeTZ string, c Circadian) (float64, error) {
	if !startUTC.Before(endUTC) {
		return 0, nil
	}
	loc, err := time.LoadLocation(homeTZ)
	if err != nil {
		return 0, Wrap(KindRosterValidation, "unresolvable timezone: "+homeTZ, err)
	}

	const stepMinutes = 1
	step := stepMinutes * time.Minute
	minutesInWOCL := 0
	for t := startUTC; t.Before(endUTC); t = t.Add(step) {
		local := t.In(loc)
		if inWOCL(local, c.WOCLStartHour, c.WOCLEndHour) {
			minutesInWOCL++
		}
	}
	return float64(minutesInWOCL) / 60.0, nil
}

// DutyCrossesWOCL reports whether any part of the duty's report-to-release
// interval overlaps the WOCL window in home-base local time.
func DutyCrossesWOCL(d Duty, homeTZ string, c Circadian) (bool, error) {
	h, err := WOCLOverlapHours(d.ReportUTC, d.ReleaseUTC, homeTZ, c)
	if err != nil {
		return false, err
	}
	return h > 0, nil
}

// IntervalOverlapHours returns the overlap, in hours, between two
// [start, end) intervals. Zero if they do not overlap.
func IntervalOverlapHours(aStart, aEnd, bStart, bEnd time.Time) float64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start).Hours()
}

// Overlaps reports whether two [start, end) intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
