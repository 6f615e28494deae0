package domain

import "sort"

// Display defaults for the delay histogram
const (
	DelayClipLow       = -30
	DelayClipHigh      = 30
	DelayHistogramBins = 50
)

// DeliveryRecord is the per-order delivery projection
type DeliveryRecord struct {
	DeliveryDelay int         `json:"delivery_delay"`
	DelayStatus   DelayStatus `json:"delay_status"`
}

// DeliveryMetrics holds unclipped delays, one record per order
type DeliveryMetrics []DeliveryRecord

type StatusShare struct {
	Status DelayStatus `json:"delay_status"`
	Count  int         `json:"count"`
	Share  float64     `json:"share"`
}

type DeliverySummary struct {
	Orders      int           `json:"orders"`
	MeanDelay   float64       `json:"mean_delay"`
	MedianDelay float64       `json:"median_delay"`
	Statuses    []StatusShare `json:"statuses"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// StatusCounts counts records per status label. Every known label is
// present in the result, with zero when it never occurs.
func (m DeliveryMetrics) StatusCounts() map[DelayStatus]int {
	counts := make(map[DelayStatus]int, len(DelayStatuses))
	for _, s := range DelayStatuses {
		counts[s] = 0
	}
	for _, r := range m {
		counts[r.DelayStatus]++
	}
	return counts
}

// Share returns the percentage of records with the given status, 0 when empty
func (m DeliveryMetrics) Share(status DelayStatus) float64 {
	if len(m) == 0 {
		return 0
	}
	return float64(m.StatusCounts()[status]) / float64(len(m)) * 100
}

func (m DeliveryMetrics) MeanDelay() float64 {
	if len(m) == 0 {
		return 0
	}
	sum := 0
	for _, r := range m {
		sum += r.DeliveryDelay
	}
	return float64(sum) / float64(len(m))
}

func (m DeliveryMetrics) MedianDelay() float64 {
	n := len(m)
	if n == 0 {
		return 0
	}
	delays := make([]int, n)
	for i, r := range m {
		delays[i] = r.DeliveryDelay
	}
	sort.Ints(delays)
	if n%2 == 1 {
		return float64(delays[n/2])
	}
	return float64(delays[n/2-1]+delays[n/2]) / 2
}

func (m DeliveryMetrics) Summary() DeliverySummary {
	counts := m.StatusCounts()
	statuses := make([]StatusShare, 0, len(DelayStatuses))
	for _, s := range DelayStatuses {
		share := 0.0
		if len(m) > 0 {
			share = float64(counts[s]) / float64(len(m)) * 100
		}
		statuses = append(statuses, StatusShare{Status: s, Count: counts[s], Share: share})
	}
	return DeliverySummary{
		Orders:      len(m),
		MeanDelay:   m.MeanDelay(),
		MedianDelay: m.MedianDelay(),
		Statuses:    statuses,
	}
}

// Clipped returns the delays limited to [lo, hi]. The receiver is not modified.
func (m DeliveryMetrics) Clipped(lo, hi int) []int {
	out := make([]int, len(m))
	for i, r := range m {
		out[i] = clip(r.DeliveryDelay, lo, hi)
	}
	return out
}

// Histogram buckets the clipped delays into equal-width bins over [lo, hi].
// The last bin is closed on the right.
func (m DeliveryMetrics) Histogram(bins, lo, hi int) []HistogramBin {
	if bins <= 0 || hi <= lo {
		return []HistogramBin{}
	}
	width := float64(hi-lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = float64(lo) + float64(i)*width
		out[i].Upper = float64(lo) + float64(i+1)*width
	}
	out[bins-1].Upper = float64(hi)

	for _, v := range m.Clipped(lo, hi) {
		idx := int(float64(v-lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
