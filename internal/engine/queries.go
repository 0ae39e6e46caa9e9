package engine

import (
	"context"
	"sort"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
)

// Quote is one resource as seen from the player's location.
type Quote struct {
	ResourceID  string
	Name        string
	Price       float64
	Available   int
	Direction   int
	Momentum    float64
	Owned       int
	Multipliers events.Multipliers
}

// MarketView is the market of the player's current location.
type MarketView struct {
	Session  Session
	Location catalog.Location
	Quotes   []Quote
}

// EventView pairs an instance with its definition.
type EventView struct {
	Instance   events.Instance
	Definition *catalog.EventDefinition
	// New is set the first time the instance is listed.
	New bool
	// Affected holds the resources whose price or supply the event moves at
	// the player's location. Expired events affect nothing.
	Affected []string
}

func (g *Game) read(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return g.store.WithTx(ctx, fn)
}

// Session returns the session row.
func (g *Game) Session(ctx context.Context, sessionID string) (*Session, error) {
	var sess *Session
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		sess, err = r.Sessions().Get(ctx, sessionID)
		return err
	})
	return sess, err
}

// Sessions lists every stored session.
func (g *Game) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Sessions().List(ctx)
		return err
	})
	return out, err
}

// Market quotes every resource at the player's location with event effects
// applied.
func (g *Game) Market(ctx context.Context, sessionID string) (MarketView, error) {
	var view MarketView
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		sess, err := r.Sessions().Get(ctx, sessionID)
		if err != nil {
			return err
		}
		loc, ok := g.Catalog.Location(sess.LocationID)
		if !ok {
			return notFound("location", sess.LocationID)
		}
		states, err := r.Resources().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		lots, err := r.Lots().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		insts, err := r.Events().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		active := events.ActiveOnly(insts)
		owned := economy.OwnedByResource(lots)

		view = MarketView{Session: *sess, Location: *loc}
		for _, st := range states {
			res, ok := g.Catalog.Resource(st.ResourceID)
			if !ok {
				continue
			}
			fx := g.resolver.Effects(res.ID, loc.ID, active)
			view.Quotes = append(view.Quotes, Quote{
				ResourceID:  res.ID,
				Name:        res.Name,
				Price:       economy.LocalPrice(st.CurrentPrice, fx.Price),
				Available:   economy.LocalAvailability(st.AvailableQuantity, fx.Availability),
				Direction:   st.PriceDirection,
				Momentum:    st.PriceMomentum,
				Owned:       owned[res.ID],
				Multipliers: fx,
			})
		}
		return nil
	})
	return view, err
}

// History returns a resource's recorded prices, oldest first.
func (g *Game) History(ctx context.Context, sessionID, resourceID string) ([]economy.HistoryEntry, error) {
	if _, err := g.resource(resourceID); err != nil {
		return nil, err
	}
	var out []economy.HistoryEntry
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		st, _, err := stateFor(ctx, r, sessionID, resourceID)
		if err != nil {
			return err
		}
		out, err = r.History().List(ctx, st.ID)
		return err
	})
	return out, err
}

// Journal returns the newest records first.
func (g *Game) Journal(ctx context.Context, sessionID string, limit int) ([]journal.Record, error) {
	var out []journal.Record
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		if _, err := r.Sessions().Get(ctx, sessionID); err != nil {
			return err
		}
		var err error
		out, err = r.Journal().List(ctx, sessionID, limit)
		return err
	})
	return out, err
}

// BuddyJournal returns one buddy's records, newest first.
func (g *Game) BuddyJournal(ctx context.Context, sessionID string, buddyID int64) ([]journal.Record, error) {
	var out []journal.Record
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		if _, err := r.Buddies().Get(ctx, sessionID, buddyID); err != nil {
			return err
		}
		recs, err := r.Journal().List(ctx, sessionID, 0)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if id, ok := rec.Ref.AgentID(); ok && id == buddyID {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

// Buddies lists the session's buddies.
func (g *Game) Buddies(ctx context.Context, sessionID string) ([]*buddy.Agent, error) {
	var out []*buddy.Agent
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Buddies().ListBySession(ctx, sessionID)
		return err
	})
	return out, err
}

// Inventory lists the player's lots, oldest first.
func (g *Game) Inventory(ctx context.Context, sessionID string) ([]economy.Lot, error) {
	var out []economy.Lot
	err := g.read(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Lots().ListBySession(ctx, sessionID)
		return err
	})
	return out, err
}

// Events lists event instances, active ones first and then newest first.
// When activeOnly is set expired instances are left out. Listing marks the
// returned instances seen.
func (g *Game) Events(ctx context.Context, sessionID string, activeOnly bool) ([]EventView, error) {
	var out []EventView
	err := g.store.WithTx(ctx, func(ctx context.Context, r Repos) error {
		out = out[:0]
		sess, err := r.Sessions().Get(ctx, sessionID)
		if err != nil {
			return err
		}
		insts, err := r.Events().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		for _, inst := range insts {
			if activeOnly && !inst.Active() {
				continue
			}
			view := EventView{New: !inst.Seen}
			if view.New {
				inst.Seen = true
				if err := r.Events().Update(ctx, inst); err != nil {
					return err
				}
			}
			view.Instance = inst
			view.Definition, _ = g.Catalog.Event(inst.EventID)
			if view.Definition != nil && inst.Active() {
				view.Affected = g.affected(view.Definition, sess.LocationID)
			}
			out = append(out, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Instance, out[j].Instance
		if a.Active() != b.Active() {
			return a.Active()
		}
		return a.DayTriggered > b.DayTriggered
	})
	return out, nil
}

func (g *Game) affected(def *catalog.EventDefinition, locationID string) []string {
	var ids []string
	for _, res := range g.Catalog.Resources {
		if g.resolver.Touches(def, res.ID, locationID) {
			ids = append(ids, res.ID)
		}
	}
	return ids
}
