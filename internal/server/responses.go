package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"car-park/internal/billing"
	"car-park/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type AddSlotRequest struct {
	SlotID string `json:"slot_id"`
	Type   string `json:"type"`
}

type GenerateSlotsRequest struct {
	Staff   int `json:"staff"`
	Visitor int `json:"visitor"`
}

type ParkCarRequest struct {
	Registration string `json:"registration"`
	Owner        string `json:"owner"`
	Type         string `json:"type"`
}

type CarResponse struct {
	Registration string          `json:"registration"`
	Owner        string          `json:"owner"`
	Type         string          `json:"type"`
	ParkedAt     time.Time       `json:"parked_at"`
	Duration     string          `json:"duration"`
	Elapsed      billing.Elapsed `json:"elapsed"`
	Fee          int64           `json:"fee"`
}

type SlotResponse struct {
	SlotID   string       `json:"slot_id"`
	Type     string       `json:"type"`
	Occupied bool         `json:"occupied"`
	Car      *CarResponse `json:"car,omitempty"`
}

type ListSlotsResponse struct {
	Count int            `json:"count"`
	Slots []SlotResponse `json:"slots"`
}

type GenerateSlotsResponse struct {
	StaffAdded   int      `json:"staff_added"`
	VisitorAdded int      `json:"visitor_added"`
	Skipped      []string `json:"skipped"`
}

type SummaryResponse struct {
	Total           int `json:"total"`
	Occupied        int `json:"occupied"`
	Available       int `json:"available"`
	StaffTotal      int `json:"staff_total"`
	StaffOccupied   int `json:"staff_occupied"`
	VisitorTotal    int `json:"visitor_total"`
	VisitorOccupied int `json:"visitor_occupied"`
}

func newSlotResponse(v parking.SlotView) SlotResponse {
	resp := SlotResponse{
		SlotID:   v.ID,
		Type:     strings.ToLower(v.Kind()),
		Occupied: v.IsOccupied(),
	}
	if v.Car != nil {
		resp.Car = &CarResponse{
			Registration: v.Car.RegistrationNumber,
			Owner:        v.Car.Owner,
			Type:         typeName(v.Car.IsStaff),
			ParkedAt:     v.Car.ParkedAt,
			Duration:     v.Elapsed.String(),
			Elapsed:      v.Elapsed,
			Fee:          v.Fee,
		}
	}
	return resp
}

func typeName(staff bool) string {
	if staff {
		return "staff"
	}
	return "visitor"
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
