// Package buddy implements the autonomous agents that hold a resource lot on
// the player's behalf and sell it once a target profit is reached.
package buddy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/simerr"
)

// MaxTargetPercent caps the profit target a buddy may be given.
const MaxTargetPercent = 200

// Agent is one buddy. Holding agents always carry a resource, quantity and
// purchase price; idle agents carry none of them.
type Agent struct {
	ID                  int64   `db:"id" json:"id"`
	SessionID           string  `db:"session_id" json:"session_id"`
	Name                string  `db:"name" json:"name"`
	LocationID          string  `db:"location_id" json:"location_id"`
	Status              Status  `db:"status" json:"status"`
	ResourceID          string  `db:"resource_id" json:"resource_id,omitempty"`
	Quantity            int     `db:"quantity" json:"quantity"`
	PurchasePrice       float64 `db:"purchase_price" json:"purchase_price"`
	TargetProfitPercent float64 `db:"target_profit_percent" json:"target_profit_percent"`
	LastSaleProfit      float64 `db:"last_sale_profit" json:"last_sale_profit"`
	LastSaleDay         *int    `db:"last_sale_day" json:"last_sale_day,omitempty"`
}

// Sale describes a completed automatic sale.
type Sale struct {
	AgentID    int64
	ResourceID string
	LocationID string
	Quantity   int
	Price      float64
	Profit     float64
	Day        int
}

func (a *Agent) conflict(reason string) error {
	return &simerr.StateConflictError{Entity: "buddy", ID: a.ID, State: a.Status.String(), Reason: reason}
}

// Assign moves an idle agent to holding. Input problems are reported together.
func (a *Agent) Assign(resourceID string, qty int, purchasePrice, targetPercent float64) error {
	if a.Status != Idle {
		return a.conflict("only an idle buddy can be assigned stock")
	}
	var ve simerr.ValidationError
	if resourceID == "" {
		ve.Add("resource is required")
	}
	if qty <= 0 {
		ve.Add("quantity must be > 0, got %d", qty)
	}
	if purchasePrice <= 0 {
		ve.Add("purchase price must be > 0")
	}
	if err := ValidateTarget(targetPercent); err != nil {
		ve.Add("%s", err)
	}
	if err := ve.Err(); err != nil {
		return err
	}

	a.Status = a.Status.Next()
	a.ResourceID = resourceID
	a.Quantity = qty
	a.PurchasePrice = purchasePrice
	a.TargetProfitPercent = targetPercent
	a.LastSaleProfit = 0
	a.LastSaleDay = nil
	return nil
}

// ValidateTarget checks 0 < p <= MaxTargetPercent.
func ValidateTarget(p float64) error {
	if p <= 0 || p > MaxTargetPercent {
		return fmt.Errorf("target profit percent must be within (0, %d], got %g", MaxTargetPercent, p)
	}
	return nil
}

// TargetPrice is the local price at which the agent sells, in cents.
func (a *Agent) TargetPrice() float64 {
	return a.threshold().Round(2).InexactFloat64()
}

func (a *Agent) threshold() decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(a.TargetProfitPercent).Div(decimal.NewFromInt(100)))
	return decimal.NewFromFloat(a.PurchasePrice).Mul(factor)
}

// Evaluate sells the holding when localPrice has reached the target. Agents in
// any other status, or without a resource, never sell.
func (a *Agent) Evaluate(localPrice float64, day int) (Sale, bool) {
	switch a.Status {
	case Holding:
	case Idle, Sold:
		return Sale{}, false
	}
	if a.ResourceID == "" || a.Quantity <= 0 {
		return Sale{}, false
	}
	if decimal.NewFromFloat(localPrice).LessThan(a.threshold()) {
		return Sale{}, false
	}

	profit := decimal.NewFromFloat(localPrice).Sub(decimal.NewFromFloat(a.PurchasePrice)).
		Mul(decimal.NewFromInt(int64(a.Quantity))).Round(2).InexactFloat64()

	a.Status = a.Status.Next()
	a.LastSaleProfit = profit
	saleDay := day
	a.LastSaleDay = &saleDay

	return Sale{
		AgentID:    a.ID,
		ResourceID: a.ResourceID,
		LocationID: a.LocationID,
		Quantity:   a.Quantity,
		Price:      localPrice,
		Profit:     profit,
		Day:        day,
	}, true
}

// Collect pays out a sold agent's principal plus profit and returns it to idle.
func (a *Agent) Collect() (float64, error) {
	if a.Status != Sold {
		return 0, a.conflict("only a buddy that has sold can be collected")
	}
	payout := economy.AddCents(economy.Total(a.PurchasePrice, a.Quantity), a.LastSaleProfit)

	a.Status = a.Status.Next()
	a.ResourceID = ""
	a.Quantity = 0
	a.PurchasePrice = 0
	a.TargetProfitPercent = 0
	a.LastSaleProfit = 0
	a.LastSaleDay = nil
	return payout, nil
}

// Check verifies the per-status field invariants.
func (a *Agent) Check() error {
	switch a.Status {
	case Idle:
		if a.ResourceID != "" || a.Quantity != 0 || a.PurchasePrice != 0 {
			return fmt.Errorf("idle buddy %d still carries stock", a.ID)
		}
	case Holding, Sold:
		if a.ResourceID == "" || a.Quantity <= 0 || a.PurchasePrice <= 0 {
			return fmt.Errorf("%s buddy %d is missing its stock", a.Status, a.ID)
		}
	default:
		return fmt.Errorf("buddy %d has unknown status %v", a.ID, a.Status)
	}
	return nil
}
