// Package billing turns a parked interval into a display duration and a fee.
package billing

import (
	"fmt"
	"time"
)

// RatePerHour is charged for every started hour.
const RatePerHour = 6

const secondsPerHour = 3600

// Elapsed is a wall-clock interval split into whole components.
type Elapsed struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%d hours %d minutes %d seconds", e.Hours, e.Minutes, e.Seconds)
}

// Duration splits end-start into hours, minutes and seconds. Sub-second
// remainders are dropped and each component truncates toward zero.
func Duration(start, end time.Time) Elapsed {
	secs := elapsedSeconds(start, end)
	return Elapsed{
		Hours:   secs / secondsPerHour,
		Minutes: (secs % secondsPerHour) / 60,
		Seconds: secs % 60,
	}
}

// BillableHours rounds the interval up to whole hours. Anything shorter
// than a second is billed as one second, so the minimum is one hour.
func BillableHours(start, end time.Time) int64 {
	secs := max(elapsedSeconds(start, end), 1)
	return (secs + secondsPerHour - 1) / secondsPerHour
}

// Fee is BillableHours times RatePerHour.
func Fee(start, end time.Time) int64 {
	return BillableHours(start, end) * RatePerHour
}

func elapsedSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}
