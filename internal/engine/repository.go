package engine

import (
	"context"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
)

// Sessions stores the session clock and the player's wallet and position.
type Sessions interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	List(ctx context.Context) ([]Session, error)
}

// ResourceStates stores one economic state per (session, resource).
type ResourceStates interface {
	Create(ctx context.Context, st *economy.ResourceState) error
	// ListBySession returns states ordered by resource id.
	ListBySession(ctx context.Context, sessionID string) ([]*economy.ResourceState, error)
	Update(ctx context.Context, st *economy.ResourceState) error
}

// PriceHistory is append-only except that a day's row may be overwritten.
type PriceHistory interface {
	Upsert(ctx context.Context, e economy.HistoryEntry) error
	// List returns the entries of one game resource ordered by day.
	List(ctx context.Context, gameResourceID int64) ([]economy.HistoryEntry, error)
}

type EventInstances interface {
	Create(ctx context.Context, inst *events.Instance) error
	ListBySession(ctx context.Context, sessionID string) ([]events.Instance, error)
	Update(ctx context.Context, inst events.Instance) error
}

type Buddies interface {
	Create(ctx context.Context, a *buddy.Agent) error
	Get(ctx context.Context, sessionID string, id int64) (*buddy.Agent, error)
	ListBySession(ctx context.Context, sessionID string) ([]*buddy.Agent, error)
	Update(ctx context.Context, a *buddy.Agent) error
}

// Lots stores the player's inventory. Listings are oldest first.
type Lots interface {
	Create(ctx context.Context, l *economy.Lot) error
	ListBySession(ctx context.Context, sessionID string) ([]economy.Lot, error)
	ListByResource(ctx context.Context, sessionID, resourceID string) ([]economy.Lot, error)
	Update(ctx context.Context, l economy.Lot) error
	Delete(ctx context.Context, id int64) error
}

type Journal interface {
	Append(ctx context.Context, r *journal.Record) error
	// List returns the newest records first. limit <= 0 means all.
	List(ctx context.Context, sessionID string, limit int) ([]journal.Record, error)
}

// Repos is the set of repositories bound to one transaction.
type Repos interface {
	Sessions() Sessions
	Resources() ResourceStates
	History() PriceHistory
	Events() EventInstances
	Buddies() Buddies
	Lots() Lots
	Journal() Journal
}

// Store runs fn inside one transaction. The transaction commits only when
// fn returns nil; any error rolls back every write fn made.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
