package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Zero(t, Haversine(12.9716, 77.5946, 12.9716, 77.5946))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := Haversine(12.9716, 77.5946, 13.0827, 80.2707)
		d2 := Haversine(13.0827, 80.2707, 12.9716, 77.5946)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// Bangalore to Chennai, roughly 290km.
		d := Haversine(12.9716, 77.5946, 13.0827, 80.2707)
		assert.InDelta(t, 290, d, 10)
	})

	t.Run("short distance", func(t *testing.T) {
		// Two points ~1.1km apart along a meridian (0.01 degrees latitude).
		d := Haversine(12.97, 77.59, 12.98, 77.59)
		assert.InDelta(t, 1.11, d, 0.02)
	})
}
