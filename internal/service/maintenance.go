package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kshaw/clearhold/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
// Only available on the sqlite backend; the JSON store can simply delete its
// file.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all escrow data. It keeps the schema intact so the app can
// continue running, and seeding (if enabled) repopulates the demo records on
// next start.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"disputes",
			"milestones",
			"escrows",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
