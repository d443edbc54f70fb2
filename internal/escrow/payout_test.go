package escrow

import "testing"

func TestComputePayout(t *testing.T) {
	tests := []struct {
		name        string
		amountCents int64
		score       int
		wantCents   int64
		wantAuto    bool
	}{
		{"full score", 100000, 100, 100000, true},
		{"at threshold", 100000, 90, 90000, true},
		{"below threshold", 100000, 85, 85000, false},
		{"zero score", 100000, 0, 0, false},
		{"rounds half up", 1001, 50, 501, false},
		{"rounds down below half", 1001, 25, 250, false},
		{"large amount", 120000, 92, 110400, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ComputePayout(tt.amountCents, tt.score)
			if err != nil {
				t.Fatalf("ComputePayout: %v", err)
			}
			if p.PayoutCents != tt.wantCents {
				t.Errorf("payout = %d, want %d", p.PayoutCents, tt.wantCents)
			}
			if p.AutoReleased != tt.wantAuto {
				t.Errorf("autoReleased = %v, want %v", p.AutoReleased, tt.wantAuto)
			}
		})
	}
}

func TestComputePayoutNegativeAmount(t *testing.T) {
	if _, err := ComputePayout(-1, 50); err != ErrInvalidAmount {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := ComputePayout(1000, -1); err != ErrInvalidAmount {
		t.Fatalf("negative score err = %v, want ErrInvalidAmount", err)
	}
}

func TestComputeTotals(t *testing.T) {
	tot, err := ComputeTotals(100000, DefaultFeeRate)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if tot.FeeCents != 2000 {
		t.Errorf("fee = %d, want 2000", tot.FeeCents)
	}
	if tot.TotalCents != 102000 {
		t.Errorf("total = %d, want 102000", tot.TotalCents)
	}
}

func TestComputeTotalsRoundsFee(t *testing.T) {
	// 2% of 1025 cents is 20.5 cents; rounds up to 21.
	tot, err := ComputeTotals(1025, DefaultFeeRate)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if tot.FeeCents != 21 {
		t.Errorf("fee = %d, want 21", tot.FeeCents)
	}
}

func TestComputeTotalsRejectsNegatives(t *testing.T) {
	if _, err := ComputeTotals(-1, DefaultFeeRate); err != ErrInvalidAmount {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := ComputeTotals(1000, -0.02); err != ErrInvalidAmount {
		t.Fatalf("negative rate err = %v, want ErrInvalidAmount", err)
	}
}
