package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"car-park/internal/logging"
	"car-park/internal/parking"
)

type Handler struct {
	carPark     *parking.InstrumentedCarPark
	serviceName string
}

func NewHandler(carPark *parking.InstrumentedCarPark, serviceName string) *Handler {
	return &Handler{carPark: carPark, serviceName: serviceName}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views := h.carPark.ListSlots(ctx)

	slots := make([]SlotResponse, 0, len(views))
	for _, v := range views {
		slots = append(slots, newSlotResponse(v))
	}

	WriteSuccess(ctx, w, http.StatusOK, "", ListSlotsResponse{Count: len(slots), Slots: slots})
}

func (h *Handler) AddSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AddSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	isStaff, ok := parseType(req.Type)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "type must be staff or visitor")
		return
	}

	view, err := h.carPark.AddSlot(ctx, req.SlotID, isStaff)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusCreated, "Slot added", newSlotResponse(view))
}

func (h *Handler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.carPark.GenerateSlots(ctx, req.Staff, req.Visitor)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	WriteSuccess(ctx, w, http.StatusCreated, "Slots generated", GenerateSlotsResponse{
		StaffAdded:   result.StaffAdded,
		VisitorAdded: result.VisitorAdded,
		Skipped:      skipped,
	})
}

func (h *Handler) DeleteUnoccupiedSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	removed := h.carPark.DeleteUnoccupiedSlots(ctx)
	WriteSuccess(ctx, w, http.StatusOK, "Unoccupied slots deleted", map[string]int{"removed": removed})
}

func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.carPark.FindSlot(ctx, chi.URLParam(r, "slotID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "", newSlotResponse(view))
}

func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slotID := chi.URLParam(r, "slotID")
	if err := h.carPark.DeleteSlot(ctx, slotID); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "Slot deleted", map[string]string{"slot_id": slotID})
}

func (h *Handler) ParkCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	isStaff, ok := parseType(req.Type)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "type must be staff or visitor")
		return
	}

	view, err := h.carPark.ParkCar(ctx, chi.URLParam(r, "slotID"), req.Registration, req.Owner, isStaff)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusCreated, "Car parked", newSlotResponse(view))
}

func (h *Handler) FindCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.carPark.FindCar(ctx, chi.URLParam(r, "registration"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "", newSlotResponse(view))
}

// RemoveCar answers with the slot as it was just before the car left, so the
// caller sees the final duration and fee.
func (h *Handler) RemoveCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.carPark.RemoveCar(ctx, chi.URLParam(r, "registration"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "Car removed", newSlotResponse(view))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := h.carPark.Summary(ctx)
	WriteSuccess(ctx, w, http.StatusOK, "", SummaryResponse{
		Total:           s.Total,
		Occupied:        s.Occupied,
		Available:       s.Available(),
		StaffTotal:      s.StaffTotal,
		StaffOccupied:   s.StaffOccupied,
		VisitorTotal:    s.VisitorTotal,
		VisitorOccupied: s.VisitorOccupied,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logging.Warn(r.Context()).
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Car park request rejected")
	WriteError(r.Context(), w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidSlotID),
		errors.Is(err, parking.ErrInvalidRegistration),
		errors.Is(err, parking.ErrInvalidCount):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrSlotNotFound), errors.Is(err, parking.ErrCarNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrDuplicateSlot),
		errors.Is(err, parking.ErrSlotOccupied),
		errors.Is(err, parking.ErrCarAlreadyParked):
		return http.StatusConflict
	case errors.Is(err, parking.ErrSlotTypeMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseType(s string) (isStaff bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "staff":
		return true, true
	case "visitor":
		return false, true
	default:
		return false, false
	}
}
