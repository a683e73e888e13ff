package parking

import (
	"time"

	"car-park/internal/billing"
)

// CarView is a read-only copy of a parked car.
type CarView struct {
	RegistrationNumber string
	Owner              string
	IsStaff            bool
	ParkedAt           time.Time
}

// SlotView is a read-only copy of a slot taken under the car park lock. For
// occupied slots Elapsed and Fee are measured up to the moment the copy was
// taken.
type SlotView struct {
	ID          string
	IsStaffSlot bool
	Car         *CarView
	Elapsed     billing.Elapsed
	Fee         int64
}

func (v SlotView) IsOccupied() bool {
	return v.Car != nil
}

// Kind is "Staff" or "Visitor".
func (v SlotView) Kind() string {
	return kindLabel(v.IsStaffSlot)
}

// Summary counts slots by type and occupancy.
type Summary struct {
	Total           int
	Occupied        int
	StaffTotal      int
	StaffOccupied   int
	VisitorTotal    int
	VisitorOccupied int
}

func (s Summary) Available() int {
	return s.Total - s.Occupied
}

// GenerateResult reports a batch slot generation. Skipped lists ids that
// already existed.
type GenerateResult struct {
	StaffAdded   int
	VisitorAdded int
	Skipped      []string
}

func newSlotView(slot *Slot, now time.Time) SlotView {
	view := SlotView{
		ID:          slot.ID(),
		IsStaffSlot: slot.IsStaffSlot(),
	}

	car := slot.ParkedCar()
	if car == nil {
		return view
	}

	view.Car = &CarView{
		RegistrationNumber: car.RegistrationNumber(),
		Owner:              car.Owner(),
		IsStaff:            car.IsStaff(),
	}
	if parkedAt, ok := car.ParkedTime(); ok {
		view.Car.ParkedAt = parkedAt
		view.Elapsed = billing.Duration(parkedAt, now)
		view.Fee = billing.Fee(parkedAt, now)
	}

	return view
}
