package repository

import (
	"context"
	"database/sql"
	"time"
)

// Dispute is the full dispute record filed against an escrow. The escrow row
// only carries a short note; the reason, details and proposed solution live
// here.
type Dispute struct {
	ID               string
	EscrowID         string
	Reason           string
	Details          string
	ProposedSolution string
	Status           string
	OpenedAt         time.Time
}

// DisputeRepo persists dispute records.
type DisputeRepo struct {
	db *sql.DB
}

func NewDisputeRepo(db *sql.DB) *DisputeRepo { return &DisputeRepo{db: db} }

func (r *DisputeRepo) Insert(ctx context.Context, d Dispute) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO disputes(id, escrow_id, reason, details, proposed_solution, status, opened_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.EscrowID, d.Reason, d.Details, d.ProposedSolution, d.Status, d.OpenedAt)
	return err
}

func (r *DisputeRepo) ListByEscrow(ctx context.Context, escrowID string) ([]Dispute, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, escrow_id, reason, details, proposed_solution, status, opened_at
	FROM disputes WHERE escrow_id = ? ORDER BY opened_at DESC`, escrowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dispute
	for rows.Next() {
		var d Dispute
		if err := rows.Scan(&d.ID, &d.EscrowID, &d.Reason, &d.Details, &d.ProposedSolution, &d.Status, &d.OpenedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
