// Package core provides the domain model and the calendar arithmetic
// used by the recurrence engine.
package core

import (
	"fmt"
	"time"
)

// NextOccurrence returns the occurrence date following d for the given
// frequency. It is pure and the result is always strictly after d.
//
// Month and year steps clamp the day-of-month to the shorter target month
// (Jan 31 -> Feb 28, or Feb 29 in leap years). The clamped date becomes the
// new anchor: subsequent steps continue from it, so a rule anchored on the
// 31st drifts to the 28th after crossing February.
func NextOccurrence(d Date, f Frequency) (Date, error) {
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	switch f {
	case Daily:
		return Date{Time: d.AddDate(0, 0, 1)}, nil
	case Weekly:
		return Date{Time: d.AddDate(0, 0, 7)}, nil
	case Monthly:
		return AddMonths(d, 1), nil
	case Yearly:
		return AddMonths(d, 12), nil
	default:
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, f)
	}
}

// AddMonths adds whole months, clamping the day to the last day of the
// target month instead of letting it overflow (time.AddDate would turn
// Jan 31 + 1 month into Mar 2/3).
func AddMonths(d Date, months int) Date {
	year, month, day := d.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return Date{Time: firstOfTarget.AddDate(0, 0, day-1)}
}
