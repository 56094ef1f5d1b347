package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulesOverlap(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	testCases := []struct {
		name                   string
		dep1, arr1, dep2, arr2 time.Time
		overlap                bool
	}{
		{name: "identical intervals", dep1: at(0), arr1: at(4), dep2: at(0), arr2: at(4), overlap: true},
		{name: "partial overlap", dep1: at(0), arr1: at(4), dep2: at(2), arr2: at(6), overlap: true},
		{name: "contained", dep1: at(0), arr1: at(8), dep2: at(2), arr2: at(4), overlap: true},
		{name: "disjoint", dep1: at(0), arr1: at(2), dep2: at(4), arr2: at(6), overlap: false},
		{name: "back to back is allowed", dep1: at(0), arr1: at(4), dep2: at(4), arr2: at(8), overlap: false},
		{name: "back to back reversed", dep1: at(4), arr1: at(8), dep2: at(0), arr2: at(4), overlap: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, SchedulesOverlap(tc.dep1, tc.arr1, tc.dep2, tc.arr2))
			assert.Equal(t, tc.overlap, SchedulesOverlap(tc.dep2, tc.arr2, tc.dep1, tc.arr1))
		})
	}
}

func TestAirplaneType_TotalSeats(t *testing.T) {
	assert.Equal(t, 180, AirplaneType{Rows: 30, SeatsPerRow: 6}.TotalSeats())
	assert.Equal(t, 500, AirplaneType{Rows: 50, SeatsPerRow: 10}.TotalSeats())
}
