package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveries(delays ...int) DeliveryMetrics {
	m := make(DeliveryMetrics, 0, len(delays))
	for _, d := range delays {
		status := DelayStatusOnTime
		if d < 0 {
			status = DelayStatusEarly
		} else if d > 0 {
			status = DelayStatusLate
		}
		m = append(m, DeliveryRecord{DeliveryDelay: d, DelayStatus: status})
	}
	return m
}

func TestStatusCounts(t *testing.T) {
	t.Run("all labels present when empty", func(t *testing.T) {
		counts := DeliveryMetrics{}.StatusCounts()
		assert.Equal(t, map[DelayStatus]int{"Early": 0, "On Time": 0, "Late": 0}, counts)
	})

	t.Run("counts by exact label", func(t *testing.T) {
		counts := deliveries(-12, -3, 0, 4).StatusCounts()
		assert.Equal(t, 2, counts["Early"])
		assert.Equal(t, 1, counts["On Time"])
		assert.Equal(t, 1, counts["Late"])
	})
}

func TestDeliverySummary(t *testing.T) {
	tests := []struct {
		name       string
		metrics    DeliveryMetrics
		wantMean   float64
		wantMedian float64
		wantEarly  float64
	}{
		{name: "empty", metrics: DeliveryMetrics{}, wantMean: 0, wantMedian: 0, wantEarly: 0},
		{name: "odd count", metrics: deliveries(-10, 2, 5), wantMean: -1, wantMedian: 2, wantEarly: 100.0 / 3},
		{name: "even count", metrics: deliveries(-4, -2, 1, 9), wantMean: 1, wantMedian: -0.5, wantEarly: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.metrics.Summary()
			assert.Equal(t, len(tt.metrics), s.Orders)
			assert.InDelta(t, tt.wantMean, s.MeanDelay, 1e-9)
			assert.InDelta(t, tt.wantMedian, s.MedianDelay, 1e-9)
			require.Len(t, s.Statuses, 3)
			assert.Equal(t, DelayStatusEarly, s.Statuses[0].Status)
			assert.InDelta(t, tt.wantEarly, s.Statuses[0].Share, 1e-9)
			assert.InDelta(t, tt.wantEarly, tt.metrics.Share(DelayStatusEarly), 1e-9)
		})
	}
}

func TestClippedKeepsSourceUnclipped(t *testing.T) {
	m := deliveries(-45, 0, 12, 80)
	assert.Equal(t, []int{-30, 0, 12, 30}, m.Clipped(DelayClipLow, DelayClipHigh))
	assert.Equal(t, -45, m[0].DeliveryDelay)
	assert.Equal(t, 80, m[3].DeliveryDelay)
}

func TestHistogram(t *testing.T) {
	m := deliveries(-45, -30, -1, 0, 29, 30, 100)
	bins := m.Histogram(DelayHistogramBins, DelayClipLow, DelayClipHigh)
	require.Len(t, bins, DelayHistogramBins)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, len(m), total)
	assert.Equal(t, 2, bins[0].Count, "-45 clipped onto -30")
	assert.Equal(t, 3, bins[DelayHistogramBins-1].Count, "29, 30 and clipped 100")
	assert.Equal(t, -30.0, bins[0].Lower)
	assert.Equal(t, 30.0, bins[DelayHistogramBins-1].Upper)

	assert.Empty(t, m.Histogram(0, -30, 30))
	assert.Empty(t, m.Histogram(10, 5, 5))
}
