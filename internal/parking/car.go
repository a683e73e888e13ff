package parking

import (
	"fmt"
	"regexp"
	"time"
)

var registrationPattern = regexp.MustCompile(`^[A-Z]\d{4}$`)

// ValidRegistration reports whether s is one uppercase letter followed by
// four digits, e.g. "T1234".
func ValidRegistration(s string) bool {
	return registrationPattern.MatchString(s)
}

// Car is a vehicle known to the car park. Everything but the parked time is
// fixed at construction.
type Car struct {
	registrationNumber string
	owner              string
	isStaff            bool
	parkedTime         *time.Time
}

func NewCar(registrationNumber, owner string, isStaff bool) (*Car, error) {
	if !ValidRegistration(registrationNumber) {
		return nil, fmt.Errorf("%w: %q (e.g. T1234)", ErrInvalidRegistration, registrationNumber)
	}

	return &Car{
		registrationNumber: registrationNumber,
		owner:              owner,
		isStaff:            isStaff,
	}, nil
}

func (c *Car) RegistrationNumber() string {
	return c.registrationNumber
}

func (c *Car) Owner() string {
	return c.owner
}

func (c *Car) IsStaff() bool {
	return c.isStaff
}

// ParkedTime returns the time the car was parked, or false if it has never
// been parked.
func (c *Car) ParkedTime() (time.Time, bool) {
	if c.parkedTime == nil {
		return time.Time{}, false
	}
	return *c.parkedTime, true
}

// SetParkedTime records when the car was parked. Slots call it once, at park
// time; nothing stops a second call.
func (c *Car) SetParkedTime(t time.Time) {
	c.parkedTime = &t
}

func (c *Car) String() string {
	return fmt.Sprintf("%s (%s, %s)", c.registrationNumber, c.owner, kindLabel(c.isStaff))
}

func kindLabel(staff bool) string {
	if staff {
		return "Staff"
	}
	return "Visitor"
}
