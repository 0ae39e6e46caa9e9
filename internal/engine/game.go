// Package engine drives a trading session: the 30-day history bootstrap, the
// daily turn, and the player actions that sit between turns. Every turn and
// every action is one transaction against the Store.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/entropy"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
	"github.com/talgya/tradepost/internal/tags"
	"github.com/talgya/tradepost/internal/tuning"
)

// Game wires the catalog, tuning and store together.
type Game struct {
	Catalog *catalog.Catalog
	Tuning  tuning.Tuning

	store    Store
	tags     tags.Provider
	resolver *events.Resolver
	spawner  *events.Spawner
	validate *validator.Validate
	newRand  func(seed int64) entropy.Source

	// OnTurn is called after each committed turn.
	OnTurn func(TurnReport)
}

// Option customises a Game.
type Option func(*Game)

// WithTagProvider replaces the catalog's own tag assignments.
func WithTagProvider(p tags.Provider) Option {
	return func(g *Game) { g.tags = p }
}

// WithRandom replaces the seeded source constructor. Seeds are still derived
// per session and per day.
func WithRandom(newRand func(seed int64) entropy.Source) Option {
	return func(g *Game) { g.newRand = newRand }
}

// New builds a Game over store.
func New(store Store, cat *catalog.Catalog, tun tuning.Tuning, opts ...Option) (*Game, error) {
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	g := &Game{
		Catalog:  cat,
		Tuning:   tun,
		store:    store,
		validate: validator.New(),
		newRand:  entropy.NewSeeded,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tags == nil {
		cached, err := tags.NewCached(cat.TagProvider(), 0)
		if err != nil {
			return nil, err
		}
		g.tags = cached
	}
	g.resolver = events.NewResolver(cat, g.tags)
	g.spawner = events.NewSpawner(cat, tun.Events.SpawnProbability)
	return g, nil
}

// dayRand is the source for everything drawn on one simulated day.
func (g *Game) dayRand(sess *Session, day int) entropy.Source {
	return g.newRand(entropy.DaySeed(sess.Seed, day))
}

// transact runs fn in a transaction and mirrors the journal records it
// produced to the log once they are committed.
func (g *Game) transact(ctx context.Context, op string, fn func(ctx context.Context, r Repos, out *[]journal.Record) error) error {
	var records []journal.Record
	err := g.store.WithTx(ctx, func(ctx context.Context, r Repos) error {
		records = records[:0]
		if err := fn(ctx, r, &records); err != nil {
			return err
		}
		for i := range records {
			if err := r.Journal().Append(ctx, &records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Warn("rolled back", "op", op, "err", err)
		return err
	}
	journal.Emit(records)
	return nil
}

func (g *Game) loadActive(ctx context.Context, r Repos, sessionID string) (*Session, error) {
	sess, err := r.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.requireActive(); err != nil {
		return nil, err
	}
	return sess, nil
}
