package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kshaw/clearhold/internal/escrow"
)

// withTx runs fn in a transaction, rolling back on error.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// EscrowRepo persists escrows and their milestones in sqlite. Milestones have
// no identity of their own and are rewritten wholesale with their parent.
type EscrowRepo struct {
	db *sql.DB
}

func NewEscrowRepo(db *sql.DB) *EscrowRepo { return &EscrowRepo{db: db} }

const escrowColumns = `id, code, title, description, category, freelancer_address, deadline,
 auto_release, dispute_window_days, checks, amount_cents, status, progress,
 activated_at, submitted_at, score, paid_cents, auto_released, completed_at,
 dispute_reason, dispute_opened_at, created_at, updated_at`

func (r *EscrowRepo) Insert(ctx context.Context, e escrow.Escrow) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if err := insertEscrowRow(ctx, tx, e); err != nil {
			return err
		}
		return insertMilestones(ctx, tx, e.ID, e.Milestones)
	})
}

func (r *EscrowRepo) Get(ctx context.Context, id string) (escrow.Escrow, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+escrowColumns+` FROM escrows WHERE id = ?`, id)
	e, err := scanEscrow(row)
	if err == sql.ErrNoRows {
		return escrow.Escrow{}, escrow.ErrNotFound
	}
	if err != nil {
		return escrow.Escrow{}, err
	}
	e.Milestones, err = r.fetchMilestones(ctx, e.ID)
	if err != nil {
		return escrow.Escrow{}, err
	}
	return e, nil
}

// List returns matching escrows newest first. A blank or "all" status and a
// blank search mean no filtering.
func (r *EscrowRepo) List(ctx context.Context, q escrow.Query) ([]escrow.Escrow, error) {
	var where []string
	var args []interface{}

	if q.Status != "" && q.Status != escrow.StatusAll {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(title LIKE ? COLLATE NOCASE OR code LIKE ? COLLATE NOCASE)")
		pat := "%" + s + "%"
		args = append(args, pat, pat)
	}

	query := `SELECT ` + escrowColumns + ` FROM escrows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []escrow.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Milestones, err = r.fetchMilestones(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update rewrites the full record, milestones included, in one transaction.
func (r *EscrowRepo) Update(ctx context.Context, e escrow.Escrow) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
	UPDATE escrows SET
	 code = ?, title = ?, description = ?, category = ?, freelancer_address = ?, deadline = ?,
	 auto_release = ?, dispute_window_days = ?, checks = ?, amount_cents = ?, status = ?, progress = ?,
	 activated_at = ?, submitted_at = ?, score = ?, paid_cents = ?, auto_released = ?, completed_at = ?,
	 dispute_reason = ?, dispute_opened_at = ?, updated_at = ?
	WHERE id = ?`,
			e.Code, e.Title, e.Description, e.Category, e.FreelancerAddress, e.Deadline,
			e.AutoRelease, e.DisputeWindowDays, strings.Join(e.Checks, ","), e.AmountCents, string(e.Status), e.Progress,
			e.ActivatedAt, submittedAt(e), score(e), paidCents(e), autoReleased(e), completedAt(e),
			disputeReason(e), disputeOpenedAt(e), e.UpdatedAt,
			e.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return escrow.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM milestones WHERE escrow_id = ?`, e.ID); err != nil {
			return err
		}
		return insertMilestones(ctx, tx, e.ID, e.Milestones)
	})
}

func insertEscrowRow(ctx context.Context, tx *sql.Tx, e escrow.Escrow) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO escrows(`+escrowColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Code, e.Title, e.Description, e.Category, e.FreelancerAddress, e.Deadline,
		e.AutoRelease, e.DisputeWindowDays, strings.Join(e.Checks, ","), e.AmountCents, string(e.Status), e.Progress,
		e.ActivatedAt, submittedAt(e), score(e), paidCents(e), autoReleased(e), completedAt(e),
		disputeReason(e), disputeOpenedAt(e), e.CreatedAt, e.UpdatedAt)
	return err
}

func insertMilestones(ctx context.Context, tx *sql.Tx, escrowID string, ms []escrow.Milestone) error {
	for i, m := range ms {
		_, err := tx.ExecContext(ctx, `
	INSERT INTO milestones(escrow_id, position, title, description, amount_cents, date, done)
	VALUES(?, ?, ?, ?, ?, ?, ?)`,
			escrowID, i, m.Title, m.Description, m.AmountCents, m.Date, m.Done)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *EscrowRepo) fetchMilestones(ctx context.Context, escrowID string) ([]escrow.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT title, description, amount_cents, date, done
	FROM milestones WHERE escrow_id = ? ORDER BY position`, escrowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []escrow.Milestone
	for rows.Next() {
		var m escrow.Milestone
		if err := rows.Scan(&m.Title, &m.Description, &m.AmountCents, &m.Date, &m.Done); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEscrow(row rowScanner) (escrow.Escrow, error) {
	var e escrow.Escrow
	var status, checks string
	var submitted, completed, disputeOpened *time.Time
	var scoreVal, paid *int64
	var released *bool
	var reason *string

	err := row.Scan(
		&e.ID, &e.Code, &e.Title, &e.Description, &e.Category, &e.FreelancerAddress, &e.Deadline,
		&e.AutoRelease, &e.DisputeWindowDays, &checks, &e.AmountCents, &status, &e.Progress,
		&e.ActivatedAt, &submitted, &scoreVal, &paid, &released, &completed,
		&reason, &disputeOpened, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return escrow.Escrow{}, err
	}

	e.Status = escrow.Status(status)
	if checks != "" {
		e.Checks = strings.Split(checks, ",")
	}
	if submitted != nil {
		e.Submission = &escrow.Submission{SubmittedAt: *submitted}
	}
	if scoreVal != nil && paid != nil && completed != nil {
		e.Verification = &escrow.Verification{
			Score:        int(*scoreVal),
			PaidCents:    *paid,
			AutoReleased: released != nil && *released,
			CompletedAt:  *completed,
		}
	}
	if reason != nil && disputeOpened != nil {
		e.Dispute = &escrow.DisputeNote{Reason: *reason, OpenedAt: *disputeOpened}
	}
	return e, nil
}

func submittedAt(e escrow.Escrow) *time.Time {
	if e.Submission == nil {
		return nil
	}
	return &e.Submission.SubmittedAt
}

func score(e escrow.Escrow) *int64 {
	if e.Verification == nil {
		return nil
	}
	v := int64(e.Verification.Score)
	return &v
}

func paidCents(e escrow.Escrow) *int64 {
	if e.Verification == nil {
		return nil
	}
	return &e.Verification.PaidCents
}

func autoReleased(e escrow.Escrow) *bool {
	if e.Verification == nil {
		return nil
	}
	return &e.Verification.AutoReleased
}

func completedAt(e escrow.Escrow) *time.Time {
	if e.Verification == nil {
		return nil
	}
	return &e.Verification.CompletedAt
}

func disputeReason(e escrow.Escrow) *string {
	if e.Dispute == nil {
		return nil
	}
	return &e.Dispute.Reason
}

func disputeOpenedAt(e escrow.Escrow) *time.Time {
	if e.Dispute == nil {
		return nil
	}
	return &e.Dispute.OpenedAt
}
