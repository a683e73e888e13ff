package parking

import (
	"fmt"
	"regexp"
	"time"
)

var slotIDPattern = regexp.MustCompile(`^[A-Z]\d{2}$`)

// ValidSlotID reports whether s is one uppercase letter followed by two
// digits, e.g. "F01".
func ValidSlotID(s string) bool {
	return slotIDPattern.MatchString(s)
}

// Slot is a single parking space. It is either a staff or a visitor slot and
// holds at most one car.
type Slot struct {
	id          string
	isStaffSlot bool
	car         *Car
}

func NewSlot(id string, isStaffSlot bool) (*Slot, error) {
	if !ValidSlotID(id) {
		return nil, fmt.Errorf("%w: %q (e.g. F01)", ErrInvalidSlotID, id)
	}

	return &Slot{
		id:          id,
		isStaffSlot: isStaffSlot,
	}, nil
}

func (s *Slot) ID() string {
	return s.id
}

func (s *Slot) IsStaffSlot() bool {
	return s.isStaffSlot
}

func (s *Slot) IsOccupied() bool {
	return s.car != nil
}

// ParkedCar returns the occupant, or nil when the slot is empty.
func (s *Slot) ParkedCar() *Car {
	return s.car
}

// ParkCar parks car here and stamps it with the current time. See ParkCarAt.
func (s *Slot) ParkCar(car *Car) bool {
	return s.ParkCarAt(car, time.Now())
}

// ParkCarAt takes ownership of car and stamps it with at. It fails without
// side effects if the slot is occupied or the car's staff flag differs from
// the slot's. Occupancy is checked first.
func (s *Slot) ParkCarAt(car *Car, at time.Time) bool {
	if s.IsOccupied() {
		return false
	}
	if car.IsStaff() != s.isStaffSlot {
		return false
	}

	s.car = car
	car.SetParkedTime(at)
	return true
}

// RemoveCar drops the occupant. It returns false if the slot was empty.
func (s *Slot) RemoveCar() bool {
	if !s.IsOccupied() {
		return false
	}
	s.car = nil
	return true
}

func (s *Slot) String() string {
	if s.IsOccupied() {
		return fmt.Sprintf("%s [%s] - Occupied by %s", s.id, kindLabel(s.isStaffSlot), s.car)
	}
	return fmt.Sprintf("%s [%s] - Empty", s.id, kindLabel(s.isStaffSlot))
}
