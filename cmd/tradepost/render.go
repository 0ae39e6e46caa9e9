package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/engine"
	"github.com/talgya/tradepost/internal/journal"
	"github.com/talgya/tradepost/internal/simerr"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed, color.Bold)
)

// describe turns an error into the line printed before exiting.
func describe(err error) string {
	var ve *simerr.ValidationError
	switch {
	case errors.As(err, &ve):
		var b strings.Builder
		b.WriteString(bad.Sprint("rejected:"))
		for _, p := range ve.Problems {
			b.WriteString("\n  - " + p)
		}
		return b.String()
	case simerr.IsNotFound(err):
		return bad.Sprint("not found: ") + err.Error()
	case simerr.IsStateConflict(err):
		return bad.Sprint("not now: ") + err.Error()
	case simerr.IsPersistence(err):
		return bad.Sprint("storage error, nothing was changed: ") + err.Error()
	default:
		return bad.Sprint("error: ") + err.Error()
	}
}

func arrow(direction int) string {
	switch {
	case direction > 0:
		return good.Sprint("▲")
	case direction < 0:
		return bad.Sprint("▼")
	default:
		return "·"
	}
}

func mult(v float64) string {
	if v == 1 {
		return ""
	}
	return fmt.Sprintf("x%.2f", v)
}

func printMarket(v engine.MarketView) {
	heading.Printf("%s, day %d, cash %s\n", v.Location.Name, v.Session.CurrentDay, economy.FormatCents(v.Session.Cash))
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Price", "", "Available", "Owned", "Event price", "Event supply"}),
	)
	for _, q := range v.Quotes {
		table.Append([]string{
			q.ResourceID,
			economy.FormatCents(q.Price),
			arrow(q.Direction),
			strconv.Itoa(q.Available),
			strconv.Itoa(q.Owned),
			mult(q.Multipliers.Price),
			mult(q.Multipliers.Availability),
		})
	}
	table.Render()
}

func printSessions(sessions []engine.Session, days int) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Session", "Day", "Status", "Location", "Cash", "Started"}),
	)
	for _, s := range sessions {
		table.Append([]string{
			s.ID,
			fmt.Sprintf("%d/%d", s.CurrentDay, days),
			string(s.Status),
			s.LocationID,
			economy.FormatCents(s.Cash),
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}

func printTurn(g *engine.Game, r engine.TurnReport) {
	heading.Printf("Day %d\n", r.Day)
	for _, inst := range r.Expired {
		fmt.Printf("  %s has ended\n", eventName(g.Catalog, inst.EventID))
	}
	if r.Spawned != nil {
		warn.Printf("  %s for %d days\n", eventName(g.Catalog, r.Spawned.EventID), r.Spawned.DaysRemaining)
	}
	for _, s := range r.Sales {
		good.Printf("  buddy #%d sold %d %s at %s, profit %s\n",
			s.AgentID, s.Quantity, s.ResourceID, economy.FormatCents(s.Price), economy.FormatCents(s.Profit))
	}
	if r.Finished {
		heading.Println("The trading season is over.")
	}
}

func eventName(c *catalog.Catalog, id string) string {
	if def, ok := c.Event(id); ok && def.Name != "" {
		return def.Name
	}
	return id
}

func printTrade(verb string, r engine.TradeResult) {
	good.Printf("%s %d %s at %s for %s", verb, r.Quantity, r.ResourceID, economy.FormatCents(r.Price), economy.FormatCents(r.Total))
	if verb == "sell" {
		fmt.Printf(", profit %s", economy.FormatCents(r.Profit))
	}
	fmt.Printf(". Cash %s.\n", economy.FormatCents(r.Cash))
}

func printLots(lots []economy.Lot, capacity int) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Lot", "Resource", "Qty", "Paid", "Day"}),
	)
	for _, l := range lots {
		table.Append([]string{
			strconv.FormatInt(l.ID, 10),
			l.ResourceID,
			strconv.Itoa(l.Quantity),
			economy.FormatCents(l.PurchasePrice),
			strconv.Itoa(l.PurchaseDay),
		})
	}
	table.Render()
	fmt.Printf("%d of %d slots used\n", economy.TotalQuantity(lots), capacity)
}

func printLocations(locs []catalog.Location, tilesPerDay float64) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Location", "Name", "X", "Y", "Population", "Tags"}),
	)
	for _, l := range locs {
		table.Append([]string{
			l.ID, l.Name, strconv.Itoa(l.X), strconv.Itoa(l.Y), strconv.Itoa(l.Population), strings.Join(l.Tags, ", "),
		})
	}
	table.Render()
	fmt.Printf("Travel covers %.1f tiles per day.\n", tilesPerDay)
}

func printHistory(hist []economy.HistoryEntry) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Day", "Price", "Quantity"}),
	)
	for _, h := range hist {
		table.Append([]string{strconv.Itoa(h.Day), economy.FormatCents(h.Price), strconv.Itoa(h.Quantity)})
	}
	table.Render()
}

func printEvents(views []engine.EventView) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Event", "Rarity", "Started", "Days left", "Affects here", "Description"}),
	)
	for _, v := range views {
		name, rarity, desc := v.Instance.EventID, "", ""
		if v.Definition != nil {
			name, rarity, desc = v.Definition.Name, string(v.Definition.Rarity), v.Definition.Description
		}
		if v.New {
			name = warn.Sprint(name + " (new)")
		}
		table.Append([]string{
			name, rarity, strconv.Itoa(v.Instance.DayTriggered), strconv.Itoa(v.Instance.DaysRemaining),
			strings.Join(v.Affected, ", "), desc,
		})
	}
	table.Render()
}

func printJournal(recs []journal.Record) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Day", "Kind", "Entry"}),
	)
	for _, r := range recs {
		table.Append([]string{strconv.Itoa(r.Day), string(r.Category), r.Message})
	}
	table.Render()
}

func printBuddies(crew []*buddy.Agent) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Name", "Location", "Status", "Holding", "Target", "Last profit"}),
	)
	for _, b := range crew {
		holding, target, profit := "", "", ""
		if b.Status != buddy.Idle {
			holding = fmt.Sprintf("%d %s @ %s", b.Quantity, b.ResourceID, economy.FormatCents(b.PurchasePrice))
			target = economy.FormatCents(b.TargetPrice())
		}
		if b.Status == buddy.Sold {
			profit = economy.FormatCents(b.LastSaleProfit)
		}
		table.Append([]string{
			strconv.FormatInt(b.ID, 10), b.Name, b.LocationID, b.Status.String(), holding, target, profit,
		})
	}
	table.Render()
}
