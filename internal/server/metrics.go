package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"car-park/internal/parking"
)

var slotCountDesc = prometheus.NewDesc(
	"car_park_slot_count",
	"Number of car park slots by type and state.",
	[]string{"type", "state"},
	nil,
)

type occupancyCollector struct {
	carPark *parking.InstrumentedCarPark
}

// NewOccupancyCollector exposes a scrape-time snapshot of slot occupancy.
func NewOccupancyCollector(carPark *parking.InstrumentedCarPark) prometheus.Collector {
	return &occupancyCollector{carPark: carPark}
}

func (c *occupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- slotCountDesc
}

func (c *occupancyCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.carPark.Summary(context.Background())

	emit := func(kind, state string, n int) {
		ch <- prometheus.MustNewConstMetric(slotCountDesc, prometheus.GaugeValue, float64(n), kind, state)
	}
	emit("staff", "occupied", s.StaffOccupied)
	emit("staff", "available", s.StaffTotal-s.StaffOccupied)
	emit("visitor", "occupied", s.VisitorOccupied)
	emit("visitor", "available", s.VisitorTotal-s.VisitorOccupied)
}
