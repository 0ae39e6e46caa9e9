package economy

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/tradepost/internal/simerr"
)

// Lot is one purchase of a resource. Quantity is always > 0; a fully consumed
// lot is removed.
type Lot struct {
	ID            int64   `db:"id" json:"id"`
	SessionID     string  `db:"session_id" json:"session_id"`
	ResourceID    string  `db:"resource_id" json:"resource_id"`
	Quantity      int     `db:"quantity" json:"quantity"`
	PurchasePrice float64 `db:"purchase_price" json:"purchase_price"`
	PurchaseDay   int     `db:"purchase_day" json:"purchase_day"`
}

// Consumption is the outcome of taking stock out of a set of lots.
type Consumption struct {
	Quantity     int
	TotalCost    float64
	AveragePrice float64
	Remaining    []Lot   // surviving lots, oldest first
	Updated      []Lot   // lots that were partially drawn down
	Removed      []int64 // IDs of lots that were used up
}

// Consume takes qty units from lots, oldest first. lots must already be in
// purchase order. Nothing is touched unless the whole quantity is available.
func Consume(lots []Lot, qty int) (Consumption, error) {
	var ve simerr.ValidationError
	if qty <= 0 {
		ve.Add("quantity must be > 0, got %d", qty)
		return Consumption{}, ve.Err()
	}
	if have := TotalQuantity(lots); have < qty {
		ve.Add("insufficient inventory: have %d, need %d", have, qty)
		return Consumption{}, ve.Err()
	}

	out := Consumption{Quantity: qty}
	cost := decimal.Zero
	need := qty
	for _, lot := range lots {
		if need == 0 {
			out.Remaining = append(out.Remaining, lot)
			continue
		}
		take := min(lot.Quantity, need)
		cost = cost.Add(decimal.NewFromFloat(lot.PurchasePrice).Mul(decimal.NewFromInt(int64(take))))
		need -= take

		if take == lot.Quantity {
			out.Removed = append(out.Removed, lot.ID)
			continue
		}
		lot.Quantity -= take
		out.Updated = append(out.Updated, lot)
		out.Remaining = append(out.Remaining, lot)
	}

	out.TotalCost = cost.Round(2).InexactFloat64()
	out.AveragePrice = cost.Div(decimal.NewFromInt(int64(qty))).InexactFloat64()
	return out, nil
}

// TotalQuantity sums the quantity held in lots.
func TotalQuantity(lots []Lot) int {
	total := 0
	for _, l := range lots {
		total += l.Quantity
	}
	return total
}

// OwnedByResource sums lot quantities per resource.
func OwnedByResource(lots []Lot) map[string]int {
	out := make(map[string]int)
	for _, l := range lots {
		out[l.ResourceID] += l.Quantity
	}
	return out
}
