package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCar(t *testing.T) {
	car, err := NewCar("S1234", "Alice", true)
	require.NoError(t, err)

	assert.Equal(t, "S1234", car.RegistrationNumber())
	assert.Equal(t, "Alice", car.Owner())
	assert.True(t, car.IsStaff())

	_, parked := car.ParkedTime()
	assert.False(t, parked, "new car should have no parked time")
}

func TestNewCarRejectsBadRegistration(t *testing.T) {
	for _, reg := range []string{"", "s1234", "S123", "S12345", "SS1234", "12345", " S1234", "S1234 ", "S12a4"} {
		t.Run(reg, func(t *testing.T) {
			car, err := NewCar(reg, "Alice", false)
			assert.ErrorIs(t, err, ErrInvalidRegistration)
			assert.Nil(t, car)
		})
	}
}

func TestValidRegistration(t *testing.T) {
	for _, reg := range []string{"A0000", "T1234", "Z9999"} {
		assert.True(t, ValidRegistration(reg), reg)
	}
}

func TestCarSetParkedTime(t *testing.T) {
	car, err := NewCar("T5678", "Bob", false)
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	car.SetParkedTime(at)

	got, ok := car.ParkedTime()
	require.True(t, ok)
	assert.Equal(t, at, got)
}

func TestCarString(t *testing.T) {
	staff, _ := NewCar("S1234", "Alice", true)
	visitor, _ := NewCar("T5678", "Bob", false)

	assert.Equal(t, "S1234 (Alice, Staff)", staff.String())
	assert.Equal(t, "T5678 (Bob, Visitor)", visitor.String())
}
