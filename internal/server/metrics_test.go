package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancyCollector(t *testing.T) {
	carPark, _ := newTestCarPark(t)
	ctx := context.Background()

	_, err := carPark.GenerateSlots(ctx, 2, 3)
	require.NoError(t, err)
	_, err = carPark.ParkCar(ctx, "T01", "V1000", "Eve", false)
	require.NoError(t, err)

	expected := `
# HELP car_park_slot_count Number of car park slots by type and state.
# TYPE car_park_slot_count gauge
car_park_slot_count{state="available",type="staff"} 2
car_park_slot_count{state="available",type="visitor"} 2
car_park_slot_count{state="occupied",type="staff"} 0
car_park_slot_count{state="occupied",type="visitor"} 1
`
	require.NoError(t, testutil.CollectAndCompare(NewOccupancyCollector(carPark), strings.NewReader(expected)))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/car-park/slots/generate", GenerateSlotsRequest{Staff: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `car_park_slot_count{state="available",type="staff"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
