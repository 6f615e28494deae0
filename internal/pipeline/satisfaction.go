package pipeline

import (
	"sort"

	"github.com/ecombi/dashboard/internal/domain"
)

const monthLayout = "2006-01"

type monthBucket struct {
	sum   int
	count int
}

// SatisfactionOverTime joins reviews to their order's purchase month (UTC)
// and averages review scores per month. Reviews without an order are
// dropped. Rows are sorted by month explicitly.
func SatisfactionOverTime(reviews []domain.OrderReview, orders []domain.Order) []domain.MonthlySatisfaction {
	monthByOrder := make(map[string]string, len(orders))
	for _, o := range orders {
		if _, seen := monthByOrder[o.OrderID]; !seen {
			monthByOrder[o.OrderID] = o.PurchaseTimestamp.UTC().Format(monthLayout)
		}
	}

	buckets := make(map[string]*monthBucket)
	for _, r := range reviews {
		month, ok := monthByOrder[r.OrderID]
		if !ok {
			continue
		}
		b, ok := buckets[month]
		if !ok {
			b = &monthBucket{}
			buckets[month] = b
		}
		b.sum += r.ReviewScore
		b.count++
	}

	rows := make([]domain.MonthlySatisfaction, 0, len(buckets))
	for month, b := range buckets {
		rows = append(rows, domain.MonthlySatisfaction{
			Month:           month,
			MeanReviewScore: float64(b.sum) / float64(b.count),
			ReviewCount:     b.count,
		})
	}
	// YYYY-MM sorts lexically in chronological order
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// ReviewScoreDistribution counts every review by score, 1 through 5.
// Scores that never occur are reported with a zero count.
func ReviewScoreDistribution(reviews []domain.OrderReview) []domain.ReviewScoreCount {
	counts := make([]int, domain.MaxReviewScore+1)
	for _, r := range reviews {
		if r.ReviewScore >= domain.MinReviewScore && r.ReviewScore <= domain.MaxReviewScore {
			counts[r.ReviewScore]++
		}
	}
	out := make([]domain.ReviewScoreCount, 0, domain.MaxReviewScore)
	for score := domain.MinReviewScore; score <= domain.MaxReviewScore; score++ {
		out = append(out, domain.ReviewScoreCount{Score: score, Count: counts[score]})
	}
	return out
}
