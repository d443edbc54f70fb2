package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kshaw/clearhold/internal/config"
	"github.com/kshaw/clearhold/internal/database"
	"github.com/kshaw/clearhold/internal/database/repository"
	"github.com/kshaw/clearhold/internal/jsonstore"
	"github.com/kshaw/clearhold/internal/oracle"
	"github.com/kshaw/clearhold/internal/profile"
	"github.com/kshaw/clearhold/internal/secrets"
	"github.com/kshaw/clearhold/internal/service"
	"github.com/kshaw/clearhold/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger()

	store, disputes, db, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer cleanup()

	user, err := profile.Load()
	if err != nil {
		log.Fatalf("profile: %v", err)
	}

	lifecycle := &service.LifecycleService{
		Escrows:  store,
		Disputes: disputes,
		Log:      logger,
	}
	review := &service.ReviewService{
		Lifecycle: lifecycle,
		Oracle:    oracleProvider(cfg),
	}
	var maint *service.MaintenanceService
	if db != nil {
		maint = &service.MaintenanceService{DB: db}
	}

	p := tea.NewProgram(tui.New(ctx, cfg, lifecycle, review, maint, user), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// openStore builds the configured backend: sqlite with migrations and the
// dispute table, or the plain JSON file store. The *sql.DB is nil on the
// JSON backend.
func openStore(ctx context.Context, cfg config.Config) (service.EscrowStore, service.DisputeStore, *sql.DB, func(), error) {
	if cfg.Storage.Driver == "json" {
		js, err := jsonstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return js, nil, nil, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, nil, nil, nil, err
	}
	db, err := database.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := database.RunMigrationsWithDB(db); err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}
	if cfg.Storage.Seed {
		if err := database.SeedDemo(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, nil, err
		}
	}
	return repository.NewEscrowRepo(db), repository.NewDisputeRepo(db), db, func() { _ = db.Close() }, nil
}

func oracleProvider(cfg config.Config) oracle.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.Oracle.Provider)) {
	case "remote":
		return oracle.NewRemote(cfg.Oracle.Endpoint, resolveOracleKey(cfg))
	default:
		return oracle.NewHeuristic(time.Duration(cfg.Oracle.DelaySeconds) * time.Second)
	}
}

func resolveOracleKey(cfg config.Config) string {
	env := strings.TrimSpace(cfg.Oracle.APIKeyEnv)
	if env == "" {
		env = "CLEARHOLD_ORACLE_KEY"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if k, err := secrets.Fetch("oracle"); err == nil {
		return k
	}
	return strings.TrimSpace(cfg.Oracle.APIKey)
}

func newLogger() *slog.Logger {
	dir, err := os.UserCacheDir()
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	dir = filepath.Join(dir, "clearhold")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	f, err := os.OpenFile(filepath.Join(dir, "clearhold.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	// The TUI owns the terminal; logs go to a file instead.
	return slog.New(slog.NewTextHandler(f, nil))
}
