package parking

import "errors"

// Validation errors
var (
	ErrInvalidSlotID       = errors.New("invalid slot id")
	ErrInvalidRegistration = errors.New("invalid registration number")
	ErrInvalidCount        = errors.New("invalid slot count")
)

// Slot errors
var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrDuplicateSlot    = errors.New("slot already exists")
	ErrSlotOccupied     = errors.New("slot is occupied")
	ErrSlotTypeMismatch = errors.New("car type does not match slot type")
)

// Car errors
var (
	ErrCarNotFound      = errors.New("car not found")
	ErrCarAlreadyParked = errors.New("car is already parked")
)
