package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const shellHelp = `Commands:
  generate <staff_count> <visitor_count>
  add_slot <slot_id> <staff|visitor>
  delete_slot <slot_id>
  delete_unoccupied
  slot <slot_id>
  list
  park <slot_id> <registration> <staff|visitor> <owner...>
  find <registration>
  remove <registration>
  status
  help
  exit`

const timeLayout = "2006-01-02 15:04:05"

// InstrumentedShell is a line-oriented operator console over a car park.
type InstrumentedShell struct {
	carPark   *InstrumentedCarPark
	telemetry *TelemetryProvider
	scanner   *bufio.Scanner
	out       io.Writer

	ok   *color.Color
	warn *color.Color
}

func NewInstrumentedShell(carPark *InstrumentedCarPark, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *InstrumentedShell {
	return &InstrumentedShell{
		carPark:   carPark,
		telemetry: telemetry,
		scanner:   bufio.NewScanner(in),
		out:       out,
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgRed),
	}
}

// Run reads commands until input ends, "exit" is entered or ctx is done.
func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil && s.scanner.Scan() {
		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		done := s.processCommand(cmdCtx, input)
		cmdSpan.End()

		if done {
			break
		}
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "generate":
		s.handleGenerate(ctx, parts)
	case "add_slot":
		s.handleAddSlot(ctx, parts)
	case "delete_slot":
		s.handleDeleteSlot(ctx, parts)
	case "delete_unoccupied":
		s.handleDeleteUnoccupied(ctx)
	case "slot":
		s.handleSlot(ctx, parts)
	case "list":
		s.handleList(ctx)
	case "park":
		s.handlePark(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "remove":
		s.handleRemove(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "exit", "quit":
		fmt.Fprintln(s.out, "Program end!")
		return true
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command")
		s.warn.Fprintf(s.out, "Unknown command: %s\n", command)
	}
	return false
}

func (s *InstrumentedShell) handleGenerate(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.usage(ctx, "generate <staff_count> <visitor_count>")
		return
	}

	staff, err1 := strconv.Atoi(parts[1])
	visitor, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		s.warn.Fprintln(s.out, "Please enter non-negative integers for slot counts.")
		return
	}

	result, err := s.carPark.GenerateSlots(ctx, staff, visitor)
	if err != nil {
		s.warn.Fprintln(s.out, "Please enter slot counts between 0 and 99.")
		return
	}

	s.ok.Fprintf(s.out, "Generated %d staff and %d visitor slots.\n", result.StaffAdded, result.VisitorAdded)
	if len(result.Skipped) > 0 {
		s.warn.Fprintf(s.out, "Skipped existing slots: %s\n", strings.Join(result.Skipped, ", "))
	}
}

func (s *InstrumentedShell) handleAddSlot(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.usage(ctx, "add_slot <slot_id> <staff|visitor>")
		return
	}

	isStaff, ok := parseKind(parts[2])
	if !ok {
		s.usage(ctx, "add_slot <slot_id> <staff|visitor>")
		return
	}

	slotID := parts[1]
	if _, err := s.carPark.AddSlot(ctx, slotID, isStaff); err != nil {
		s.fail(err, slotID)
		return
	}
	s.ok.Fprintf(s.out, "Added slot %s\n", slotID)
}

func (s *InstrumentedShell) handleDeleteSlot(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.usage(ctx, "delete_slot <slot_id>")
		return
	}

	slotID := parts[1]
	if err := s.carPark.DeleteSlot(ctx, slotID); err != nil {
		if errors.Is(err, ErrSlotOccupied) {
			s.warn.Fprintf(s.out, "Cannot delete occupied slot %s.\n", slotID)
			return
		}
		s.fail(err, slotID)
		return
	}
	s.ok.Fprintf(s.out, "Deleted slot %s\n", slotID)
}

func (s *InstrumentedShell) handleDeleteUnoccupied(ctx context.Context) {
	removed := s.carPark.DeleteUnoccupiedSlots(ctx)
	s.ok.Fprintf(s.out, "Deleted %d unoccupied slots.\n", removed)
}

func (s *InstrumentedShell) handleSlot(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.usage(ctx, "slot <slot_id>")
		return
	}

	view, err := s.carPark.FindSlot(ctx, parts[1])
	if err != nil {
		s.fail(err, parts[1])
		return
	}

	if !view.IsOccupied() {
		fmt.Fprintf(s.out, "%s [%s] - Empty\n", view.ID, view.Kind())
		return
	}
	fmt.Fprintf(s.out, "%s [%s] - Occupied by %s (%s, %s)\n",
		view.ID, view.Kind(), view.Car.RegistrationNumber, view.Car.Owner, kindLabel(view.Car.IsStaff))
	s.printCharge(view)
}

func (s *InstrumentedShell) handleList(ctx context.Context) {
	views := s.carPark.ListSlots(ctx)
	if len(views) == 0 {
		fmt.Fprintln(s.out, "No slots")
		return
	}

	fmt.Fprintf(s.out, "%-6s %-8s %-10s %-10s %-20s %s\n", "ID", "Type", "Occupied", "Reg", "Owner", "Duration/Fee")
	for _, v := range views {
		if !v.IsOccupied() {
			fmt.Fprintf(s.out, "%-6s %-8s %-10s %-10s %-20s %s\n", v.ID, v.Kind(), "No", "-", "-", "-")
			continue
		}
		fmt.Fprintf(s.out, "%-6s %-8s %-10s %-10s %-20s %s / $%d\n",
			v.ID, v.Kind(), "Yes", v.Car.RegistrationNumber, v.Car.Owner, v.Elapsed, v.Fee)
	}
}

func (s *InstrumentedShell) handlePark(ctx context.Context, parts []string) {
	if len(parts) < 5 {
		s.usage(ctx, "park <slot_id> <registration> <staff|visitor> <owner...>")
		return
	}

	isStaff, ok := parseKind(parts[3])
	if !ok {
		s.usage(ctx, "park <slot_id> <registration> <staff|visitor> <owner...>")
		return
	}

	slotID, reg := parts[1], parts[2]
	owner := strings.Join(parts[4:], " ")

	view, err := s.carPark.ParkCar(ctx, slotID, reg, owner, isStaff)
	if err != nil {
		switch {
		case errors.Is(err, ErrCarAlreadyParked):
			s.warn.Fprintf(s.out, "Car %s is already parked in another slot.\n", reg)
		case errors.Is(err, ErrInvalidRegistration):
			s.fail(err, reg)
		default:
			s.fail(err, slotID)
		}
		return
	}

	s.ok.Fprintf(s.out, "Car parked in %s at %s\n", view.ID, view.Car.ParkedAt.Format(timeLayout))
}

func (s *InstrumentedShell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.usage(ctx, "find <registration>")
		return
	}

	reg := parts[1]
	view, err := s.carPark.FindCar(ctx, reg)
	if err != nil {
		s.fail(err, reg)
		return
	}

	fmt.Fprintf(s.out, "Car: %s\nOwner: %s\nSlot: %s\n", reg, view.Car.Owner, view.ID)
	s.printCharge(view)
	s.ok.Fprintf(s.out, "Found car %s in slot %s\n", reg, view.ID)
}

func (s *InstrumentedShell) handleRemove(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.usage(ctx, "remove <registration>")
		return
	}

	reg := parts[1]
	view, err := s.carPark.RemoveCar(ctx, reg)
	if err != nil {
		s.fail(err, reg)
		return
	}

	s.printCharge(view)
	s.ok.Fprintf(s.out, "Removed car %s\n", reg)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	sum := s.carPark.Summary(ctx)
	fmt.Fprintf(s.out, "Slots: %d (occupied %d, available %d)\n", sum.Total, sum.Occupied, sum.Available())
	fmt.Fprintf(s.out, "Staff: %d/%d occupied\n", sum.StaffOccupied, sum.StaffTotal)
	fmt.Fprintf(s.out, "Visitor: %d/%d occupied\n", sum.VisitorOccupied, sum.VisitorTotal)
}

func (s *InstrumentedShell) printCharge(view SlotView) {
	if view.Car == nil || view.Car.ParkedAt.IsZero() {
		return
	}
	fmt.Fprintf(s.out, "Parked: %s\nDuration: %s\nFee: $%d\n",
		view.Car.ParkedAt.Format(timeLayout), view.Elapsed, view.Fee)
}

func (s *InstrumentedShell) usage(ctx context.Context, text string) {
	trace.SpanFromContext(ctx).AddEvent("invalid_arguments")
	s.warn.Fprintf(s.out, "Usage: %s\n", text)
}

// fail prints the message an operator sees for err. subject is the slot id or
// registration the command was about.
func (s *InstrumentedShell) fail(err error, subject string) {
	var msg string
	switch {
	case errors.Is(err, ErrInvalidSlotID):
		msg = "Invalid Slot ID. Use an uppercase letter followed by 2 digits (e.g., F01)."
	case errors.Is(err, ErrInvalidRegistration):
		msg = "Invalid registration number format (e.g., T1234)."
	case errors.Is(err, ErrDuplicateSlot):
		msg = fmt.Sprintf("Slot %s already exists.", subject)
	case errors.Is(err, ErrSlotNotFound):
		msg = fmt.Sprintf("Slot %s not found.", subject)
	case errors.Is(err, ErrSlotOccupied):
		msg = fmt.Sprintf("Slot %s is occupied.", subject)
	case errors.Is(err, ErrSlotTypeMismatch):
		msg = "Car type must match slot type."
	case errors.Is(err, ErrCarNotFound):
		msg = fmt.Sprintf("Car %s not found.", subject)
	default:
		msg = fmt.Sprintf("Error: %s", err)
	}
	s.warn.Fprintln(s.out, msg)
}

func parseKind(s string) (isStaff bool, ok bool) {
	switch strings.ToLower(s) {
	case "staff":
		return true, true
	case "visitor":
		return false, true
	}
	return false, false
}
