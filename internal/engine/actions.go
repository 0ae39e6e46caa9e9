package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/journal"
	"github.com/talgya/tradepost/internal/simerr"
)

// TradeRequest is a buy or sell order at the player's current location.
type TradeRequest struct {
	SessionID  string `validate:"required"`
	ResourceID string `validate:"required"`
	Quantity   int    `validate:"gt=0"`
}

// TradeResult reports a completed trade and the cash left afterwards.
type TradeResult struct {
	ResourceID string
	Quantity   int
	Price      float64
	Total      float64
	Profit     float64 // realised on sales only
	Cash       float64
}

// AssignRequest hands Quantity units of ResourceID to an idle buddy, to be
// sold once the local price beats the purchase price by TargetPercent.
type AssignRequest struct {
	SessionID     string  `validate:"required"`
	BuddyID       int64   `validate:"gt=0"`
	ResourceID    string  `validate:"required"`
	Quantity      int     `validate:"gt=0"`
	TargetPercent float64 `validate:"gt=0,lte=200"`
}

// TravelResult lists the turns spent on the road. Arrived is false when the
// session ended before the last day.
type TravelResult struct {
	From    string
	To      string
	Days    int
	Turns   []TurnReport
	Arrived bool
}

// check runs struct validation and converts field errors into problems.
func (g *Game) check(req any, ve *simerr.ValidationError) {
	err := g.validate.Struct(req)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("%v", err)
		return
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			ve.Add("%s is required", fe.Field())
		case "gt":
			ve.Add("%s must be > %s", fe.Field(), fe.Param())
		case "lte":
			ve.Add("%s must be <= %s", fe.Field(), fe.Param())
		default:
			ve.Add("%s failed %s", fe.Field(), fe.Tag())
		}
	}
}

func (g *Game) resource(id string) (*catalog.Resource, error) {
	res, ok := g.Catalog.Resource(id)
	if !ok {
		return nil, notFound("resource", id)
	}
	return res, nil
}

func notFound(entity string, id any) error {
	return &simerr.NotFoundError{Entity: entity, ID: id}
}

// stateFor returns the session's state for a resource.
func stateFor(ctx context.Context, r Repos, sessionID, resourceID string) (*economy.ResourceState, []*economy.ResourceState, error) {
	states, err := r.Resources().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	for _, st := range states {
		if st.ResourceID == resourceID {
			return st, states, nil
		}
	}
	return nil, states, &simerr.NotFoundError{Entity: "resource state", ID: resourceID}
}

// Buy purchases at the player's location. Every problem with the order is
// reported at once and nothing changes unless all checks pass.
func (g *Game) Buy(ctx context.Context, req TradeRequest) (TradeResult, error) {
	var ve simerr.ValidationError
	if g.check(req, &ve); ve.Err() != nil {
		return TradeResult{}, ve.Err()
	}
	res, err := g.resource(req.ResourceID)
	if err != nil {
		return TradeResult{}, err
	}

	var result TradeResult
	err = g.transact(ctx, "buy", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, req.SessionID)
		if err != nil {
			return err
		}
		st, _, err := stateFor(ctx, r, sess.ID, res.ID)
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

		fx := g.resolver.Effects(res.ID, sess.LocationID, insts)
		price := economy.LocalPrice(st.CurrentPrice, fx.Price)
		available := economy.LocalAvailability(st.AvailableQuantity, fx.Availability)
		cost := economy.Total(price, req.Quantity)

		if req.Quantity > available {
			ve.Add("only %d %s available, asked for %d", available, res.ID, req.Quantity)
		}
		if cost > sess.Cash {
			ve.Add("costs %s, cash is %s", economy.FormatCents(cost), economy.FormatCents(sess.Cash))
		}
		if held := economy.TotalQuantity(lots); held+req.Quantity > g.Tuning.InventoryCapacity {
			ve.Add("inventory holds %d of %d, cannot add %d", held, g.Tuning.InventoryCapacity, req.Quantity)
		}
		if err := ve.Err(); err != nil {
			return err
		}

		sess.Cash = economy.AddCents(sess.Cash, -cost)
		st.AvailableQuantity = max(st.AvailableQuantity-req.Quantity, 0)
		lot := &economy.Lot{
			SessionID:     sess.ID,
			ResourceID:    res.ID,
			Quantity:      req.Quantity,
			PurchasePrice: price,
			PurchaseDay:   sess.CurrentDay,
		}
		if err := r.Lots().Create(ctx, lot); err != nil {
			return err
		}
		if err := r.Resources().Update(ctx, st); err != nil {
			return err
		}
		if err := r.Sessions().Update(ctx, sess); err != nil {
			return err
		}

		result = TradeResult{ResourceID: res.ID, Quantity: req.Quantity, Price: price, Total: cost, Cash: sess.Cash}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategoryPurchase, journal.ResourceRef(res.ID),
			"bought %d %s at %s", req.Quantity, res.Name, economy.FormatCents(price)))
		return nil
	})
	return result, err
}

// Sell sells from the oldest lots first at the player's location.
func (g *Game) Sell(ctx context.Context, req TradeRequest) (TradeResult, error) {
	var ve simerr.ValidationError
	if g.check(req, &ve); ve.Err() != nil {
		return TradeResult{}, ve.Err()
	}
	res, err := g.resource(req.ResourceID)
	if err != nil {
		return TradeResult{}, err
	}

	var result TradeResult
	err = g.transact(ctx, "sell", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, req.SessionID)
		if err != nil {
			return err
		}
		st, _, err := stateFor(ctx, r, sess.ID, res.ID)
		if err != nil {
			return err
		}
		lots, err := r.Lots().ListByResource(ctx, sess.ID, res.ID)
		if err != nil {
			return err
		}
		used, err := economy.Consume(lots, req.Quantity)
		if err != nil {
			return err
		}
		if err := applyConsumption(ctx, r, used); err != nil {
			return err
		}

		insts, err := r.Events().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		fx := g.resolver.Effects(res.ID, sess.LocationID, insts)
		price := economy.LocalPrice(st.CurrentPrice, fx.Price)
		revenue := economy.Total(price, req.Quantity)
		profit := economy.AddCents(revenue, -used.TotalCost)

		sess.Cash = economy.AddCents(sess.Cash, revenue)
		st.AvailableQuantity += req.Quantity
		if err := r.Resources().Update(ctx, st); err != nil {
			return err
		}
		if err := r.Sessions().Update(ctx, sess); err != nil {
			return err
		}

		result = TradeResult{ResourceID: res.ID, Quantity: req.Quantity, Price: price, Total: revenue, Profit: profit, Cash: sess.Cash}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategorySale, journal.ResourceRef(res.ID),
			"sold %d %s at %s, profit %s", req.Quantity, res.Name, economy.FormatCents(price), economy.FormatCents(profit)))
		return nil
	})
	return result, err
}

func applyConsumption(ctx context.Context, r Repos, c economy.Consumption) error {
	for _, id := range c.Removed {
		if err := r.Lots().Delete(ctx, id); err != nil {
			return err
		}
	}
	for _, l := range c.Updated {
		if err := r.Lots().Update(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// Travel moves the player, spending one committed turn per day on the road.
// If the session ends on the way the player never arrives.
func (g *Game) Travel(ctx context.Context, sessionID, locationID string) (TravelResult, error) {
	dest, ok := g.Catalog.Location(locationID)
	if !ok {
		return TravelResult{}, &simerr.NotFoundError{Entity: "location", ID: locationID}
	}

	var result TravelResult
	err := g.store.WithTx(ctx, func(ctx context.Context, r Repos) error {
		sess, err := g.loadActive(ctx, r, sessionID)
		if err != nil {
			return err
		}
		from, ok := g.Catalog.Location(sess.LocationID)
		if !ok {
			return &simerr.NotFoundError{Entity: "location", ID: sess.LocationID}
		}
		if from.ID == dest.ID {
			var ve simerr.ValidationError
			ve.Add("already in %s", dest.Name)
			return ve.Err()
		}
		result.From = from.ID
		result.To = dest.ID
		result.Days = catalog.TravelDays(from.Coord(), dest.Coord(), g.Tuning.TravelTilesPerDay)
		return nil
	})
	if err != nil {
		return TravelResult{}, err
	}

	for i := 0; i < result.Days; i++ {
		report, err := g.AdvanceDay(ctx, sessionID)
		if err != nil {
			return result, fmt.Errorf("travel day %d of %d: %w", i+1, result.Days, err)
		}
		result.Turns = append(result.Turns, report)
		if report.Finished && i < result.Days-1 {
			return result, nil
		}
	}

	err = g.transact(ctx, "arrive", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := r.Sessions().Get(ctx, sessionID)
		if err != nil {
			return err
		}
		sess.LocationID = dest.ID
		if err := r.Sessions().Update(ctx, sess); err != nil {
			return err
		}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategoryTravel, journal.LocationRef(dest.ID),
			"arrived in %s after %d days", dest.Name, result.Days))
		return nil
	})
	if err != nil {
		return result, err
	}
	result.Arrived = true
	return result, nil
}

// HireBuddy adds an idle buddy at the player's location.
func (g *Game) HireBuddy(ctx context.Context, sessionID, name string) (*buddy.Agent, error) {
	var hired *buddy.Agent
	err := g.transact(ctx, "hire buddy", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, sessionID)
		if err != nil {
			return err
		}
		crew, err := r.Buddies().ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}

		var ve simerr.ValidationError
		if len(crew) >= g.Tuning.MaxBuddies {
			ve.Add("already employing %d of %d buddies", len(crew), g.Tuning.MaxBuddies)
		}
		if sess.Cash < g.Tuning.BuddyHireCost {
			ve.Add("hiring costs %s, cash is %s", economy.FormatCents(g.Tuning.BuddyHireCost), economy.FormatCents(sess.Cash))
		}
		if err := ve.Err(); err != nil {
			return err
		}

		if name == "" {
			name = fmt.Sprintf("Buddy %d", len(crew)+1)
		}
		hired = &buddy.Agent{SessionID: sess.ID, Name: name, LocationID: sess.LocationID, Status: buddy.Idle}
		if err := r.Buddies().Create(ctx, hired); err != nil {
			return err
		}
		sess.Cash = economy.AddCents(sess.Cash, -g.Tuning.BuddyHireCost)
		if err := r.Sessions().Update(ctx, sess); err != nil {
			return err
		}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategoryBuddy, journal.AgentRef(hired.ID),
			"hired %s in %s", hired.Name, hired.LocationID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hired, nil
}

// AssignBuddy hands stock from the player's oldest lots to an idle buddy.
// Input problems and an inventory shortfall are reported together.
func (g *Game) AssignBuddy(ctx context.Context, req AssignRequest) (*buddy.Agent, error) {
	var ve simerr.ValidationError
	g.check(req, &ve)
	if req.SessionID == "" || req.BuddyID <= 0 || req.ResourceID == "" {
		// Nothing more can be looked up without the ids.
		return nil, ve.Err()
	}
	res, err := g.resource(req.ResourceID)
	if err != nil {
		return nil, err
	}

	var agent *buddy.Agent
	err = g.transact(ctx, "assign buddy", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, req.SessionID)
		if err != nil {
			return err
		}
		agent, err = r.Buddies().Get(ctx, sess.ID, req.BuddyID)
		if err != nil {
			return err
		}
		if agent.Status != buddy.Idle {
			return &simerr.StateConflictError{Entity: "buddy", ID: agent.ID, State: agent.Status.String(), Reason: "only an idle buddy can be assigned stock"}
		}
		lots, err := r.Lots().ListByResource(ctx, sess.ID, res.ID)
		if err != nil {
			return err
		}
		if held := economy.TotalQuantity(lots); req.Quantity > held {
			ve.Add("insufficient inventory: have %d, need %d", held, req.Quantity)
		}
		if err := ve.Err(); err != nil {
			return err
		}

		used, err := economy.Consume(lots, req.Quantity)
		if err != nil {
			return err
		}
		if err := agent.Assign(res.ID, req.Quantity, used.AveragePrice, req.TargetPercent); err != nil {
			return err
		}
		if err := applyConsumption(ctx, r, used); err != nil {
			return err
		}
		if err := r.Buddies().Update(ctx, agent); err != nil {
			return err
		}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategoryBuddy, journal.AgentRef(agent.ID),
			"%s holds %d %s, selling at %s", agent.Name, agent.Quantity, res.Name, economy.FormatCents(agent.TargetPrice())))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// CollectBuddy pays a sold buddy's proceeds into the player's cash.
func (g *Game) CollectBuddy(ctx context.Context, sessionID string, buddyID int64) (float64, error) {
	var payout float64
	err := g.transact(ctx, "collect buddy", func(ctx context.Context, r Repos, out *[]journal.Record) error {
		sess, err := g.loadActive(ctx, r, sessionID)
		if err != nil {
			return err
		}
		agent, err := r.Buddies().Get(ctx, sess.ID, buddyID)
		if err != nil {
			return err
		}
		payout, err = agent.Collect()
		if err != nil {
			return err
		}
		if err := r.Buddies().Update(ctx, agent); err != nil {
			return err
		}
		sess.Cash = economy.AddCents(sess.Cash, payout)
		if err := r.Sessions().Update(ctx, sess); err != nil {
			return err
		}
		*out = append(*out, journal.New(sess.ID, sess.CurrentDay, journal.CategoryBuddy, journal.AgentRef(agent.ID),
			"collected %s from %s", economy.FormatCents(payout), agent.Name))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return payout, nil
}
