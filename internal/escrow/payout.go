package escrow

import "math"

// AutoReleaseThreshold is the score at or above which a payout is released
// without manual review.
const AutoReleaseThreshold = 90

// DefaultFeeRate is the platform fee applied on deposit.
const DefaultFeeRate = 0.02

// Payout is the result of scoring a completed escrow.
type Payout struct {
	PayoutCents  int64
	AutoReleased bool
}

// Totals is the fee breakdown shown at deposit time.
type Totals struct {
	FeeCents   int64
	TotalCents int64
}

// ComputePayout maps (amount, score) to the proportional payout:
// amount * score / 100, rounded half-up to whole cents.
func ComputePayout(amountCents int64, score int) (Payout, error) {
	if amountCents < 0 || score < 0 {
		return Payout{}, ErrInvalidAmount
	}
	return Payout{
		PayoutCents:  (amountCents*int64(score) + 50) / 100,
		AutoReleased: score >= AutoReleaseThreshold,
	}, nil
}

// ComputeTotals returns the platform fee and the total the client pays.
func ComputeTotals(amountCents int64, feeRate float64) (Totals, error) {
	if amountCents < 0 || feeRate < 0 {
		return Totals{}, ErrInvalidAmount
	}
	fee := int64(math.Floor(float64(amountCents)*feeRate + 0.5))
	return Totals{FeeCents: fee, TotalCents: amountCents + fee}, nil
}
