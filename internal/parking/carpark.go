package parking

// CarPark owns every slot, keyed by slot id. It is not safe for concurrent
// use; InstrumentedCarPark adds the lock.
//
// FindCar is a linear scan and nothing here stops two slots holding cars with
// the same registration. Callers are expected to check FindCar before
// parking.
type CarPark struct {
	slots map[string]*Slot
}

func NewCarPark() *CarPark {
	return &CarPark{
		slots: make(map[string]*Slot),
	}
}

// AddSlot inserts slot unless its id is already taken.
func (cp *CarPark) AddSlot(slot *Slot) bool {
	if _, exists := cp.slots[slot.ID()]; exists {
		return false
	}
	cp.slots[slot.ID()] = slot
	return true
}

// DeleteSlot removes an existing, empty slot.
func (cp *CarPark) DeleteSlot(slotID string) bool {
	slot, ok := cp.slots[slotID]
	if !ok || slot.IsOccupied() {
		return false
	}
	delete(cp.slots, slotID)
	return true
}

// DeleteAllUnoccupiedSlots removes every empty slot and reports how many
// went. Occupied slots stay.
func (cp *CarPark) DeleteAllUnoccupiedSlots() int {
	removed := 0
	for id, slot := range cp.slots {
		if !slot.IsOccupied() {
			delete(cp.slots, id)
			removed++
		}
	}
	return removed
}

func (cp *CarPark) FindSlot(slotID string) (*Slot, bool) {
	slot, ok := cp.slots[slotID]
	return slot, ok
}

// FindCar returns the first slot whose occupant has the given registration.
func (cp *CarPark) FindCar(registrationNumber string) (*Slot, bool) {
	for _, slot := range cp.slots {
		if slot.IsOccupied() && slot.ParkedCar().RegistrationNumber() == registrationNumber {
			return slot, true
		}
	}
	return nil, false
}

// RemoveCar empties the slot holding the given registration.
func (cp *CarPark) RemoveCar(registrationNumber string) bool {
	slot, ok := cp.FindCar(registrationNumber)
	if !ok {
		return false
	}
	return slot.RemoveCar()
}

// ListSlots returns every slot in no particular order.
func (cp *CarPark) ListSlots() []*Slot {
	slots := make([]*Slot, 0, len(cp.slots))
	for _, slot := range cp.slots {
		slots = append(slots, slot)
	}
	return slots
}

func (cp *CarPark) Len() int {
	return len(cp.slots)
}

func (cp *CarPark) OccupiedCount() int {
	n := 0
	for _, slot := range cp.slots {
		if slot.IsOccupied() {
			n++
		}
	}
	return n
}
