package pipeline

import "github.com/ecombi/dashboard/internal/domain"

// DeliveryMetrics projects each order onto its delay and delay status.
// Delays are passed through unclipped.
func DeliveryMetrics(orders []domain.Order) domain.DeliveryMetrics {
	out := make(domain.DeliveryMetrics, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.DeliveryRecord{
			DeliveryDelay: o.DeliveryDelay,
			DelayStatus:   o.DelayStatus,
		})
	}
	return out
}
