package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func runShell(t *testing.T, ipl *InstrumentedCarPark, input string) string {
	t.Helper()

	color.NoColor = true

	var out bytes.Buffer
	shell := NewInstrumentedShell(ipl, ipl.telemetry, strings.NewReader(input), &out)
	shell.Run(context.Background())
	return out.String()
}

func TestShellSlotCommands(t *testing.T) {
	ipl, _, _ := newTestCarPark(t)

	out := runShell(t, ipl, strings.Join([]string{
		"generate 2 1",
		"add_slot F01 staff",
		"add_slot X1 visitor",
		"add_slot V05 visitor",
		"delete_slot V05",
		"delete_slot V05",
		"slot T01",
	}, "\n"))

	assert.Contains(t, out, "Generated 2 staff and 1 visitor slots.")
	assert.Contains(t, out, "Slot F01 already exists.")
	assert.Contains(t, out, "Invalid Slot ID. Use an uppercase letter followed by 2 digits (e.g., F01).")
	assert.Contains(t, out, "Added slot V05")
	assert.Contains(t, out, "Deleted slot V05")
	assert.Contains(t, out, "Slot V05 not found.")
	assert.Contains(t, out, "T01 [Visitor] - Empty")
}

func TestShellParkFindRemove(t *testing.T) {
	ipl, clock, _ := newTestCarPark(t)

	_ = runShell(t, ipl, "generate 1 1\npark F01 S1234 staff Alice Smith\n")

	clock.Advance(61 * time.Minute)

	out := runShell(t, ipl, strings.Join([]string{
		"park F01 T5678 visitor Bob",
		"park T01 S1234 visitor Alice",
		"park T01 S0001 staff Carol",
		"park T01 bad visitor Dan",
		"find S1234",
		"delete_slot F01",
		"list",
		"remove S1234",
		"find S1234",
	}, "\n"))

	assert.Contains(t, out, "Slot F01 is occupied.")
	assert.Contains(t, out, "Car S1234 is already parked in another slot.")
	assert.Contains(t, out, "Car type must match slot type.")
	assert.Contains(t, out, "Invalid registration number format (e.g., T1234).")
	assert.Contains(t, out, "Owner: Alice Smith")
	assert.Contains(t, out, "Duration: 1 hours 1 minutes 0 seconds")
	assert.Contains(t, out, "Fee: $12")
	assert.Contains(t, out, "Cannot delete occupied slot F01.")
	assert.Contains(t, out, "1 hours 1 minutes 0 seconds / $12")
	assert.Contains(t, out, "Removed car S1234")
	assert.Contains(t, out, "Car S1234 not found.")
}

func TestShellListIsSortedByID(t *testing.T) {
	ipl, _, _ := newTestCarPark(t)

	out := runShell(t, ipl, "add_slot T02 visitor\nadd_slot A01 staff\nadd_slot F10 staff\nlist\n")

	a := strings.Index(out, "A01    Staff")
	f := strings.Index(out, "F10    Staff")
	tt := strings.Index(out, "T02    Visitor")
	assert.True(t, a >= 0 && f > a && tt > f, "list output not sorted:\n%s", out)
}

func TestShellStatusAndDeleteUnoccupied(t *testing.T) {
	ipl, _, _ := newTestCarPark(t)

	out := runShell(t, ipl, strings.Join([]string{
		"generate 2 2",
		"park T02 T5678 visitor Bob",
		"status",
		"delete_unoccupied",
		"status",
	}, "\n"))

	assert.Contains(t, out, "Slots: 4 (occupied 1, available 3)")
	assert.Contains(t, out, "Deleted 3 unoccupied slots.")
	assert.Contains(t, out, "Slots: 1 (occupied 1, available 0)")
	assert.Contains(t, out, "Visitor: 1/1 occupied")
}

func TestShellExitStopsReading(t *testing.T) {
	ipl, _, _ := newTestCarPark(t)

	out := runShell(t, ipl, "exit\ngenerate 1 1\n")

	assert.Contains(t, out, "Program end!")
	assert.NotContains(t, out, "Generated")
}

func TestShellUsageAndUnknown(t *testing.T) {
	ipl, _, _ := newTestCarPark(t)

	out := runShell(t, ipl, "park F01\nfly\ngenerate a b\ngenerate 100 0\n")

	assert.Contains(t, out, "Usage: park <slot_id> <registration> <staff|visitor> <owner...>")
	assert.Contains(t, out, "Unknown command: fly")
	assert.Contains(t, out, "Please enter non-negative integers for slot counts.")
	assert.Contains(t, out, "Please enter slot counts between 0 and 99.")
}
