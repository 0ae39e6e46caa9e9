package engine

import (
	"context"
	"log/slog"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/entropy"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
	"github.com/talgya/tradepost/internal/simerr"
)

// TurnReport summarises one committed day.
type TurnReport struct {
	SessionID string
	Day       int
	Refreshed int
	Expired   []events.Instance
	Spawned   *events.Instance
	Sales     []buddy.Sale
	Finished  bool
}

// AdvanceDay runs one turn: refresh every resource, age events, maybe spawn
// one, evaluate holding buddies, then move the clock. The whole turn is one
// transaction; on error nothing is kept and the call may be retried.
func (g *Game) AdvanceDay(ctx context.Context, sessionID string) (TurnReport, error) {
	var report TurnReport
	err := g.transact(ctx, "advance day", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, sessionID)
		if err != nil {
			return err
		}
		report, err = g.runTurn(ctx, r, sess, out)
		return err
	})
	if err != nil {
		return TurnReport{}, err
	}

	slog.Info("day advanced",
		"session", report.SessionID,
		"day", report.Day,
		"refreshed", report.Refreshed,
		"sales", len(report.Sales),
		"finished", report.Finished,
	)
	if g.OnTurn != nil {
		g.OnTurn(report)
	}
	return report, nil
}

func (g *Game) runTurn(ctx context.Context, r Repos, sess *Session, out *[]journal.Record) (TurnReport, error) {
	day := sess.CurrentDay + 1
	rng := g.dayRand(sess, day)
	report := TurnReport{SessionID: sess.ID, Day: day}

	// 1. Prices.
	states, err := r.Resources().ListBySession(ctx, sess.ID)
	if err != nil {
		return report, err
	}
	lots, err := r.Lots().ListBySession(ctx, sess.ID)
	if err != nil {
		return report, err
	}
	report.Refreshed, err = g.refreshAll(ctx, r, states, economy.OwnedByResource(lots), day, rng)
	if err != nil {
		return report, err
	}

	// 2. Aging.
	insts, err := r.Events().ListBySession(ctx, sess.ID)
	if err != nil {
		return report, err
	}
	for _, inst := range events.Age(insts) {
		if err := r.Events().Update(ctx, inst); err != nil {
			return report, err
		}
		if !inst.Active() {
			report.Expired = append(report.Expired, inst)
		}
	}

	// 3. Spawning. The live turn does not wait for running events to end.
	if rng.Float64() < g.Tuning.Events.TriggerProbability {
		inst, err := g.spawn(ctx, r, sess, day, rng, out)
		if err != nil {
			return report, err
		}
		if inst != nil {
			report.Spawned = inst
			insts = append(insts, *inst)
		}
	}

	// 4. Buddies.
	report.Sales, err = g.evaluateBuddies(ctx, r, sess, states, events.ActiveOnly(insts), day, out)
	if err != nil {
		return report, err
	}

	// 5. Clock.
	sess.CurrentDay = day
	if day >= g.Tuning.SessionDays {
		sess.Status = SessionFinished
		report.Finished = true
		*out = append(*out, journal.New(sess.ID, day, journal.CategorySession, journal.NoRef,
			"session finished with %s cash", economy.FormatCents(sess.Cash)))
	}
	if err := r.Sessions().Update(ctx, sess); err != nil {
		return report, err
	}
	return report, nil
}

// refreshAll recomputes every state for day. The session-wide average
// quantity is sampled once, before any state moves.
func (g *Game) refreshAll(ctx context.Context, r Repos, states []*economy.ResourceState, owned map[string]int, day int, rng entropy.Source) (int, error) {
	avg := economy.AverageQuantity(states)
	refreshed := 0
	for _, st := range states {
		res, ok := g.Catalog.Resource(st.ResourceID)
		if !ok {
			return refreshed, &simerr.NotFoundError{Entity: "resource", ID: st.ResourceID}
		}
		m := economy.Market{Volatility: res.Volatility, AvgQuantity: avg, PlayerOwned: owned[st.ResourceID]}
		entry, changed := economy.Refresh(st, day, m, rng)
		if !changed {
			continue
		}
		if err := r.Resources().Update(ctx, st); err != nil {
			return refreshed, err
		}
		if err := r.History().Upsert(ctx, entry); err != nil {
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

func (g *Game) spawn(ctx context.Context, r Repos, sess *Session, day int, rng entropy.Source, out *[]journal.Record) (*events.Instance, error) {
	inst, def, ok := g.spawner.Spawn(sess.ID, day, rng)
	if !ok {
		return nil, nil
	}
	if err := r.Events().Create(ctx, &inst); err != nil {
		return nil, err
	}
	*out = append(*out, journal.New(sess.ID, day, journal.CategoryEvent, journal.NoRef,
		"%s (%s) for %d days: %s", def.Name, def.Rarity, inst.DaysRemaining, def.Description))
	return &inst, nil
}

func (g *Game) evaluateBuddies(ctx context.Context, r Repos, sess *Session, states []*economy.ResourceState, active []events.Instance, day int, out *[]journal.Record) ([]buddy.Sale, error) {
	agents, err := r.Buddies().ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	byResource := make(map[string]*economy.ResourceState, len(states))
	for _, st := range states {
		byResource[st.ResourceID] = st
	}

	var sales []buddy.Sale
	for _, a := range agents {
		if a.Status != buddy.Holding {
			continue
		}
		st, ok := byResource[a.ResourceID]
		if !ok {
			continue
		}
		fx := g.resolver.Effects(a.ResourceID, a.LocationID, active)
		local := economy.LocalPrice(st.CurrentPrice, fx.Price)

		sale, sold := a.Evaluate(local, day)
		if !sold {
			continue
		}
		if err := r.Buddies().Update(ctx, a); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
		*out = append(*out, journal.New(sess.ID, day, journal.CategoryBuddySale, journal.AgentRef(a.ID),
			"%s sold %d %s at %s for %s profit", a.Name, sale.Quantity, sale.ResourceID,
			economy.FormatCents(sale.Price), economy.FormatCents(sale.Profit)))
	}
	return sales, nil
}
