package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/entropy"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
)

// NewSession creates a session and backfills its price history. A zero seed
// picks a fresh random one.
func (g *Game) NewSession(ctx context.Context, seed int64) (*Session, error) {
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	sess := &Session{
		ID:            uuid.NewString(),
		Seed:          seed,
		Cash:          g.Tuning.StartingCash,
		Status:        SessionActive,
		CatalogDigest: g.Catalog.Digest,
		CreatedAt:     time.Now().UTC(),
	}

	err := g.transact(ctx, "new session", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		return g.bootstrap(ctx, r, sess, out)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("session created",
		"session", sess.ID,
		"seed", sess.Seed,
		"location", sess.LocationID,
		"history_days", g.Tuning.HistoryDays,
	)
	return sess, nil
}

// bootstrap picks the starting town, creates one state per resource and
// replays the history window, days 1-HistoryDays through 0.
func (g *Game) bootstrap(ctx context.Context, r Repos, sess *Session, out *[]journal.Record) error {
	rng := g.newRand(sess.Seed)

	start := &g.Catalog.Locations[rng.Intn(len(g.Catalog.Locations))]
	sess.LocationID = start.ID
	if err := r.Sessions().Create(ctx, sess); err != nil {
		return err
	}

	firstDay := 1 - g.Tuning.HistoryDays
	neighbors := g.Catalog.Neighbors(start, g.Tuning.Sizing.NeighborRadius)

	states := make([]*economy.ResourceState, 0, len(g.Catalog.Resources))
	for i := range g.Catalog.Resources {
		res := &g.Catalog.Resources[i]
		base := economy.RoundCents(entropy.Uniform(rng, res.MinPrice, res.MaxPrice))
		st := &economy.ResourceState{
			SessionID:         sess.ID,
			ResourceID:        res.ID,
			CurrentPrice:      base,
			BasePrice:         base,
			AvailableQuantity: economy.InitialQuantity(g.Tuning.Sizing, res, start, neighbors),
			LastRefreshedDay:  firstDay - 1,
			SinePhase:         entropy.Uniform(rng, 0, 2*math.Pi),
			TrendPhase:        entropy.Uniform(rng, 0, 2*math.Pi),
		}
		if err := r.Resources().Create(ctx, st); err != nil {
			return fmt.Errorf("create state for %s: %w", res.ID, err)
		}
		states = append(states, st)
	}

	var insts []events.Instance
	for day := firstDay; day <= 0; day++ {
		dayRng := g.dayRand(sess, day)
		if _, err := g.refreshAll(ctx, r, states, nil, day, dayRng); err != nil {
			return err
		}

		for _, inst := range events.Age(insts) {
			if err := r.Events().Update(ctx, inst); err != nil {
				return err
			}
		}
		// History only allows one running event at a time.
		if events.AnyActive(insts) {
			continue
		}
		inst, err := g.spawn(ctx, r, sess, day, dayRng, out)
		if err != nil {
			return err
		}
		if inst != nil {
			insts = append(insts, *inst)
		}
	}

	// Day 1 must recompute for real.
	for _, st := range states {
		st.LastRefreshedDay = 0
		if err := r.Resources().Update(ctx, st); err != nil {
			return err
		}
	}

	sess.CurrentDay = 0
	if err := r.Sessions().Update(ctx, sess); err != nil {
		return err
	}
	*out = append(*out, journal.New(sess.ID, 0, journal.CategorySession, journal.LocationRef(start.ID),
		"arrived in %s with %s", start.Name, economy.FormatCents(sess.Cash)))
	return nil
}
