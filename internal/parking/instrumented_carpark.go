package parking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"car-park/internal/logging"
)

// maxGeneratedPerType is the largest sequence a two-digit slot id can hold.
const maxGeneratedPerType = 99

type Option func(*InstrumentedCarPark)

// WithClock replaces time.Now as the source of park times and fee quotes.
func WithClock(now func() time.Time) Option {
	return func(ipl *InstrumentedCarPark) {
		ipl.now = now
	}
}

// InstrumentedCarPark is the car park as callers see it. It serialises
// access to one CarPark, validates raw input, reports failures as sentinel
// errors and records a span and metrics for every operation.
type InstrumentedCarPark struct {
	mu        sync.Mutex
	carPark   *CarPark
	telemetry *TelemetryProvider
	now       func() time.Time

	// Metrics
	operations        metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	feesCharged       metric.Int64Counter
}

func NewInstrumentedCarPark(telemetry *TelemetryProvider, opts ...Option) (*InstrumentedCarPark, error) {
	meter := telemetry.Meter()

	operations, err := meter.Int64Counter("car_park_operations_total",
		metric.WithDescription("Total number of car park operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("car_park_occupied_slots",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("car_park_slots",
		metric.WithDescription("Current number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("car_park_operation_duration_seconds",
		metric.WithDescription("Duration of car park operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	feesCharged, err := meter.Int64Counter("car_park_fees_charged_total",
		metric.WithDescription("Fees quoted to cars as they leave"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	ipl := &InstrumentedCarPark{
		carPark:           NewCarPark(),
		telemetry:         telemetry,
		now:               time.Now,
		operations:        operations,
		occupancyGauge:    occupancyGauge,
		totalSlotsGauge:   totalSlotsGauge,
		operationDuration: operationDuration,
		feesCharged:       feesCharged,
	}
	for _, opt := range opts {
		opt(ipl)
	}

	return ipl, nil
}

func (ipl *InstrumentedCarPark) AddSlot(ctx context.Context, slotID string, isStaff bool) (SlotView, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.add_slot",
		trace.WithAttributes(
			attribute.String("slot.id", slotID),
			attribute.Bool("slot.staff", isStaff),
		))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	view, err := ipl.addSlot(slotID, isStaff)
	ipl.record(ctx, span, "add_slot", start, err)
	if err != nil {
		return SlotView{}, err
	}

	ipl.totalSlotsGauge.Add(ctx, 1)
	logging.Debug(ctx).Str("slot_id", slotID).Bool("staff", isStaff).Msg("slot added")
	return view, nil
}

func (ipl *InstrumentedCarPark) addSlot(slotID string, isStaff bool) (SlotView, error) {
	slot, err := NewSlot(slotID, isStaff)
	if err != nil {
		return SlotView{}, err
	}
	if !ipl.carPark.AddSlot(slot) {
		return SlotView{}, fmt.Errorf("%w: %s", ErrDuplicateSlot, slotID)
	}
	return newSlotView(slot, ipl.now()), nil
}

// GenerateSlots adds staff slots F01..Fnn and visitor slots T01..Tnn. Ids
// that already exist are skipped.
func (ipl *InstrumentedCarPark) GenerateSlots(ctx context.Context, staffCount, visitorCount int) (GenerateResult, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.generate_slots",
		trace.WithAttributes(
			attribute.Int("slots.staff_requested", staffCount),
			attribute.Int("slots.visitor_requested", visitorCount),
		))
	defer span.End()
	start := time.Now()

	if staffCount < 0 || visitorCount < 0 || staffCount > maxGeneratedPerType || visitorCount > maxGeneratedPerType {
		err := fmt.Errorf("%w: counts must be between 0 and %d", ErrInvalidCount, maxGeneratedPerType)
		ipl.record(ctx, span, "generate_slots", start, err)
		return GenerateResult{}, err
	}

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	var result GenerateResult
	for i := 1; i <= staffCount; i++ {
		if _, err := ipl.addSlot(fmt.Sprintf("F%02d", i), true); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("F%02d", i))
			continue
		}
		result.StaffAdded++
	}
	for i := 1; i <= visitorCount; i++ {
		if _, err := ipl.addSlot(fmt.Sprintf("T%02d", i), false); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("T%02d", i))
			continue
		}
		result.VisitorAdded++
	}

	span.SetAttributes(
		attribute.Int("slots.staff_added", result.StaffAdded),
		attribute.Int("slots.visitor_added", result.VisitorAdded),
		attribute.Int("slots.skipped", len(result.Skipped)),
	)
	ipl.totalSlotsGauge.Add(ctx, int64(result.StaffAdded+result.VisitorAdded))
	ipl.record(ctx, span, "generate_slots", start, nil)

	logging.Debug(ctx).
		Int("staff_added", result.StaffAdded).
		Int("visitor_added", result.VisitorAdded).
		Strs("skipped", result.Skipped).
		Msg("slots generated")
	return result, nil
}

func (ipl *InstrumentedCarPark) DeleteSlot(ctx context.Context, slotID string) error {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.delete_slot",
		trace.WithAttributes(attribute.String("slot.id", slotID)))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	err := ipl.deleteSlot(slotID)
	ipl.record(ctx, span, "delete_slot", start, err)
	if err != nil {
		return err
	}

	ipl.totalSlotsGauge.Add(ctx, -1)
	logging.Debug(ctx).Str("slot_id", slotID).Msg("slot deleted")
	return nil
}

func (ipl *InstrumentedCarPark) deleteSlot(slotID string) error {
	slot, err := ipl.lookupSlot(slotID)
	if err != nil {
		return err
	}
	if slot.IsOccupied() {
		return fmt.Errorf("%w: %s", ErrSlotOccupied, slotID)
	}
	if !ipl.carPark.DeleteSlot(slotID) {
		return fmt.Errorf("delete slot %s: unexpected refusal", slotID)
	}
	return nil
}

// DeleteUnoccupiedSlots removes every empty slot and returns how many went.
func (ipl *InstrumentedCarPark) DeleteUnoccupiedSlots(ctx context.Context) int {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.delete_unoccupied_slots")
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	removed := ipl.carPark.DeleteAllUnoccupiedSlots()

	span.SetAttributes(attribute.Int("slots.removed", removed))
	ipl.totalSlotsGauge.Add(ctx, -int64(removed))
	ipl.record(ctx, span, "delete_unoccupied_slots", start, nil)

	logging.Debug(ctx).Int("removed", removed).Msg("unoccupied slots deleted")
	return removed
}

func (ipl *InstrumentedCarPark) FindSlot(ctx context.Context, slotID string) (SlotView, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.find_slot",
		trace.WithAttributes(attribute.String("slot.id", slotID)))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	slot, err := ipl.lookupSlot(slotID)
	ipl.record(ctx, span, "find_slot", start, err)
	if err != nil {
		return SlotView{}, err
	}
	return newSlotView(slot, ipl.now()), nil
}

// ParkCar builds a car from the raw input and parks it in slotID. A
// registration that is already parked anywhere is refused before the slot
// is tried. When the slot refuses, occupancy is reported ahead of a type
// mismatch.
func (ipl *InstrumentedCarPark) ParkCar(ctx context.Context, slotID, registrationNumber, owner string, isStaff bool) (SlotView, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.park",
		trace.WithAttributes(
			attribute.String("slot.id", slotID),
			attribute.String("car.registration_number", registrationNumber),
			attribute.Bool("car.staff", isStaff),
		))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	span.AddEvent("checking_slot")

	view, err := ipl.parkCar(slotID, registrationNumber, owner, isStaff)
	ipl.record(ctx, span, "park", start, err)
	if err != nil {
		return SlotView{}, err
	}

	span.AddEvent("car_parked", trace.WithAttributes(
		attribute.String("slot.id", view.ID),
	))
	ipl.occupancyGauge.Add(ctx, 1)

	logging.Debug(ctx).
		Str("slot_id", slotID).
		Str("registration", registrationNumber).
		Time("parked_at", view.Car.ParkedAt).
		Msg("car parked")
	return view, nil
}

func (ipl *InstrumentedCarPark) parkCar(slotID, registrationNumber, owner string, isStaff bool) (SlotView, error) {
	if !ValidSlotID(slotID) {
		return SlotView{}, fmt.Errorf("%w: %q (e.g. F01)", ErrInvalidSlotID, slotID)
	}
	car, err := NewCar(registrationNumber, owner, isStaff)
	if err != nil {
		return SlotView{}, err
	}

	slot, err := ipl.lookupSlot(slotID)
	if err != nil {
		return SlotView{}, err
	}
	if other, ok := ipl.carPark.FindCar(registrationNumber); ok {
		return SlotView{}, fmt.Errorf("%w: %s is in slot %s", ErrCarAlreadyParked, registrationNumber, other.ID())
	}

	now := ipl.now()
	if !slot.ParkCarAt(car, now) {
		if slot.IsOccupied() {
			return SlotView{}, fmt.Errorf("%w: %s", ErrSlotOccupied, slotID)
		}
		return SlotView{}, fmt.Errorf("%w: %s is a %s slot", ErrSlotTypeMismatch, slotID, kindLabel(slot.IsStaffSlot()))
	}

	return newSlotView(slot, now), nil
}

func (ipl *InstrumentedCarPark) FindCar(ctx context.Context, registrationNumber string) (SlotView, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.find_car",
		trace.WithAttributes(attribute.String("car.registration_number", registrationNumber)))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	span.AddEvent("searching_by_registration")

	slot, err := ipl.lookupCar(registrationNumber)
	ipl.record(ctx, span, "find_car", start, err)
	if err != nil {
		return SlotView{}, err
	}

	span.AddEvent("car_found", trace.WithAttributes(
		attribute.String("slot.id", slot.ID()),
	))
	return newSlotView(slot, ipl.now()), nil
}

// RemoveCar frees the slot holding registrationNumber. The returned view is
// the slot as it was just before the car left, so it carries the final
// duration and fee.
func (ipl *InstrumentedCarPark) RemoveCar(ctx context.Context, registrationNumber string) (SlotView, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.remove_car",
		trace.WithAttributes(attribute.String("car.registration_number", registrationNumber)))
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	view, err := ipl.removeCar(registrationNumber)
	ipl.record(ctx, span, "remove_car", start, err)
	if err != nil {
		return SlotView{}, err
	}

	span.AddEvent("slot_released", trace.WithAttributes(
		attribute.String("slot.id", view.ID),
		attribute.Int64("car.fee", view.Fee),
	))
	ipl.occupancyGauge.Add(ctx, -1)
	ipl.feesCharged.Add(ctx, view.Fee, metric.WithAttributes(
		attribute.String("slot.type", view.Kind()),
	))

	logging.Debug(ctx).
		Str("slot_id", view.ID).
		Str("registration", registrationNumber).
		Int64("fee", view.Fee).
		Msg("car removed")
	return view, nil
}

func (ipl *InstrumentedCarPark) removeCar(registrationNumber string) (SlotView, error) {
	slot, err := ipl.lookupCar(registrationNumber)
	if err != nil {
		return SlotView{}, err
	}

	view := newSlotView(slot, ipl.now())
	if !ipl.carPark.RemoveCar(registrationNumber) {
		return SlotView{}, fmt.Errorf("%w: %s", ErrCarNotFound, registrationNumber)
	}
	return view, nil
}

// ListSlots returns every slot sorted by id.
func (ipl *InstrumentedCarPark) ListSlots(ctx context.Context) []SlotView {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.list_slots")
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	now := ipl.now()
	slots := ipl.carPark.ListSlots()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, newSlotView(slot, now))
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].ID < views[j].ID
	})

	span.SetAttributes(attribute.Int("slots.count", len(views)))
	ipl.record(ctx, span, "list_slots", start, nil)

	return views
}

func (ipl *InstrumentedCarPark) Summary(ctx context.Context) Summary {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "car_park.summary")
	defer span.End()
	start := time.Now()

	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	var s Summary
	for _, slot := range ipl.carPark.ListSlots() {
		occupied := slot.IsOccupied()
		if slot.IsStaffSlot() {
			s.StaffTotal++
			if occupied {
				s.StaffOccupied++
			}
		} else {
			s.VisitorTotal++
			if occupied {
				s.VisitorOccupied++
			}
		}
	}
	s.Total = ipl.carPark.Len()
	s.Occupied = ipl.carPark.OccupiedCount()

	span.SetAttributes(
		attribute.Int("slots.total", s.Total),
		attribute.Int("slots.occupied", s.Occupied),
	)
	ipl.record(ctx, span, "summary", start, nil)

	return s
}

func (ipl *InstrumentedCarPark) lookupSlot(slotID string) (*Slot, error) {
	if !ValidSlotID(slotID) {
		return nil, fmt.Errorf("%w: %q (e.g. F01)", ErrInvalidSlotID, slotID)
	}
	slot, ok := ipl.carPark.FindSlot(slotID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	return slot, nil
}

func (ipl *InstrumentedCarPark) lookupCar(registrationNumber string) (*Slot, error) {
	if !ValidRegistration(registrationNumber) {
		return nil, fmt.Errorf("%w: %q (e.g. T1234)", ErrInvalidRegistration, registrationNumber)
	}
	slot, ok := ipl.carPark.FindCar(registrationNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCarNotFound, registrationNumber)
	}
	return slot, nil
}

func (ipl *InstrumentedCarPark) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	status := Outcome(err)
	labels := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("outcome", status))

	ipl.operations.Add(ctx, 1, labels)
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), labels)
}

// Outcome names the failure class of err, or "success" for nil.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidSlotID), errors.Is(err, ErrInvalidRegistration), errors.Is(err, ErrInvalidCount):
		return "invalid"
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrCarNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateSlot):
		return "duplicate"
	case errors.Is(err, ErrSlotOccupied):
		return "occupied"
	case errors.Is(err, ErrSlotTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrCarAlreadyParked):
		return "already_parked"
	default:
		return "failed"
	}
}
