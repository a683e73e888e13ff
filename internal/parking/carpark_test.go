package parking

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotIDs(cp *CarPark) []string {
	var ids []string
	for _, slot := range cp.ListSlots() {
		ids = append(ids, slot.ID())
	}
	sort.Strings(ids)
	return ids
}

func TestCarParkAddSlot(t *testing.T) {
	cp := NewCarPark()

	require.True(t, cp.AddSlot(newTestSlot(t, "F01", true)))
	require.True(t, cp.AddSlot(newTestSlot(t, "T01", false)))

	assert.False(t, cp.AddSlot(newTestSlot(t, "F01", false)), "duplicate id")
	assert.Equal(t, []string{"F01", "T01"}, slotIDs(cp))

	slot, ok := cp.FindSlot("F01")
	require.True(t, ok)
	assert.True(t, slot.IsStaffSlot(), "duplicate add must not replace the original")
}

func TestCarParkDeleteSlot(t *testing.T) {
	cp := NewCarPark()
	occupied := newTestSlot(t, "F01", true)
	cp.AddSlot(occupied)
	cp.AddSlot(newTestSlot(t, "F02", true))
	require.True(t, occupied.ParkCar(newTestCar(t, "S1234", "Alice", true)))

	assert.False(t, cp.DeleteSlot("F99"), "missing slot")
	assert.False(t, cp.DeleteSlot("F01"), "occupied slot")
	assert.Equal(t, []string{"F01", "F02"}, slotIDs(cp))

	assert.True(t, cp.DeleteSlot("F02"))
	assert.Equal(t, []string{"F01"}, slotIDs(cp))
}

func TestCarParkDeleteAllUnoccupiedSlots(t *testing.T) {
	cp := NewCarPark()
	for _, id := range []string{"F01", "F02", "F03"} {
		cp.AddSlot(newTestSlot(t, id, true))
	}
	slot, _ := cp.FindSlot("F02")
	require.True(t, slot.ParkCar(newTestCar(t, "S1234", "Alice", true)))

	assert.Equal(t, 2, cp.DeleteAllUnoccupiedSlots())
	assert.Equal(t, []string{"F02"}, slotIDs(cp))

	assert.Equal(t, 0, cp.DeleteAllUnoccupiedSlots(), "second call is a no-op")
	assert.Equal(t, []string{"F02"}, slotIDs(cp))
}

func TestCarParkFindSlot(t *testing.T) {
	cp := NewCarPark()
	cp.AddSlot(newTestSlot(t, "T07", false))

	slot, ok := cp.FindSlot("T07")
	require.True(t, ok)
	assert.Equal(t, "T07", slot.ID())

	_, ok = cp.FindSlot("T08")
	assert.False(t, ok)
}

func TestCarParkFindAndRemoveCar(t *testing.T) {
	cp := NewCarPark()
	cp.AddSlot(newTestSlot(t, "T01", false))
	cp.AddSlot(newTestSlot(t, "T02", false))

	slot, _ := cp.FindSlot("T02")
	require.True(t, slot.ParkCar(newTestCar(t, "T5678", "Bob", false)))

	found, ok := cp.FindCar("T5678")
	require.True(t, ok)
	assert.Same(t, slot, found)

	assert.True(t, cp.RemoveCar("T5678"))
	_, ok = cp.FindCar("T5678")
	assert.False(t, ok)

	assert.False(t, cp.RemoveCar("T5678"), "already removed")
	assert.Equal(t, 2, cp.Len(), "removing a car keeps its slot")
}

func TestCarParkCounts(t *testing.T) {
	cp := NewCarPark()
	assert.Equal(t, 0, cp.Len())
	assert.Empty(t, cp.ListSlots())

	cp.AddSlot(newTestSlot(t, "F01", true))
	cp.AddSlot(newTestSlot(t, "T01", false))
	slot, _ := cp.FindSlot("T01")
	slot.ParkCar(newTestCar(t, "T0001", "Dan", false))

	assert.Equal(t, 2, cp.Len())
	assert.Equal(t, 1, cp.OccupiedCount())
}

// Guards are checked in order: an occupied slot reports occupancy even for a
// mismatched car, and once empty the type check still applies.
func TestCarParkGuardOrderScenario(t *testing.T) {
	cp := NewCarPark()
	require.True(t, cp.AddSlot(newTestSlot(t, "F01", true)))

	slot, _ := cp.FindSlot("F01")
	require.True(t, slot.ParkCar(newTestCar(t, "S1234", "Alice", true)))

	visitor := newTestCar(t, "T5678", "Bob", false)
	assert.False(t, slot.ParkCar(visitor))
	assert.True(t, slot.IsOccupied())

	require.True(t, cp.RemoveCar("S1234"))

	assert.False(t, slot.ParkCar(visitor))
	assert.False(t, slot.IsOccupied())
}
