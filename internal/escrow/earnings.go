package escrow

// EarningsSummary aggregates the completed escrows for the earnings view.
type EarningsSummary struct {
	CompletedCount int
	EarnedCents    int64 // total paid out across completed escrows
	HeldCents      int64 // score shortfall retained by the platform
	AverageScore   int   // rounded mean verification score, 0 when none
}

// SummarizeEarnings walks the list and totals the completed records.
// Escrows in any other state contribute nothing.
func SummarizeEarnings(list []Escrow) EarningsSummary {
	var s EarningsSummary
	var scoreSum int
	for _, e := range list {
		if e.Status != StatusCompleted || e.Verification == nil {
			continue
		}
		s.CompletedCount++
		s.EarnedCents += e.Verification.PaidCents
		s.HeldCents += e.AmountCents - e.Verification.PaidCents
		scoreSum += e.Verification.Score
	}
	if s.CompletedCount > 0 {
		s.AverageScore = int(float64(scoreSum)/float64(s.CompletedCount) + 0.5)
	}
	return s
}
