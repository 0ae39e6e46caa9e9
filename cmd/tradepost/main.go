// Command tradepost plays a turn-based trading session from the terminal.
// State lives in a SQLite file, so each invocation is one action.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/config"
	"github.com/talgya/tradepost/internal/engine"
	"github.com/talgya/tradepost/internal/persistence"
	"github.com/talgya/tradepost/internal/tuning"
)

// app is built once per invocation by the root command's pre-run hook.
type app struct {
	cfg  *config.Config
	db   *persistence.DB
	game *engine.Game
}

func main() {
	var envFile string
	a := &app{}

	root := &cobra.Command{
		Use:           "tradepost",
		Short:         "Buy low, sell high, and let your buddies do the waiting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(envFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		a.newCmd(),
		a.sessionsCmd(),
		a.advanceCmd(),
		a.marketCmd(),
		a.buyCmd(),
		a.sellCmd(),
		a.inventoryCmd(),
		a.travelCmd(),
		a.locationsCmd(),
		a.historyCmd(),
		a.eventsCmd(),
		a.journalCmd(),
		a.buddyCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		a.close()
		os.Exit(1)
	}
}

func (a *app) open(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	slog.SetDefault(cfg.Logger())

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	tun := tuning.Default()
	if cfg.TuningPath != "" {
		if tun, err = tuning.Load(cfg.TuningPath); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.db = db
	slog.Debug("database opened", "path", cfg.DBPath)

	a.game, err = engine.New(db, cat, tun)
	return err
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// loadCatalog reads the configured catalog and, with a map seed, swaps its
// towns for a generated map.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if cfg.MapSeed == 0 {
		return cat, nil
	}

	gen := catalog.DefaultGenConfig()
	gen.Seed = cfg.MapSeed
	locs, err := catalog.GenerateLocations(gen)
	if err != nil {
		return nil, err
	}
	slog.Debug("generated map", "seed", cfg.MapSeed, "locations", len(locs))
	return cat.WithLocations(gen.Grid, locs)
}
