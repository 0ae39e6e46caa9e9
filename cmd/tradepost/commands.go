package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/engine"
)

func (a *app) newCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a session with 30 days of market history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Seed
			}
			sess, err := a.game.NewSession(cmd.Context(), seed)
			if err != nil {
				return err
			}
			heading.Printf("Session %s\n", sess.ID)
			fmt.Printf("Seed %d. You are in %s with %s.\n", sess.Seed, sess.LocationID, economy.FormatCents(sess.Cash))
			view, err := a.game.Market(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}
			printMarket(view)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "session seed (0 = random)")
	return cmd
}

func (a *app) sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.game.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			printSessions(sessions, a.game.Tuning.SessionDays)
			return nil
		},
	}
}

func (a *app) advanceCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "advance <session>",
		Short: "Run one or more daily turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < days; i++ {
				report, err := a.game.AdvanceDay(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printTurn(a.game, report)
				if report.Finished {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "n", 1, "number of days to advance")
	return cmd
}

func (a *app) marketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "market <session>",
		Short: "Show prices at your current location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.game.Market(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printMarket(view)
			return nil
		},
	}
}

func (a *app) tradeCmd(use, short string, do func(*cobra.Command, engine.TradeRequest) (engine.TradeResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session> <resource> <quantity>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[2])
			}
			res, err := do(cmd, engine.TradeRequest{SessionID: args[0], ResourceID: args[1], Quantity: qty})
			if err != nil {
				return err
			}
			printTrade(use, res)
			return nil
		},
	}
}

func (a *app) buyCmd() *cobra.Command {
	return a.tradeCmd("buy", "Buy at the local price", func(cmd *cobra.Command, req engine.TradeRequest) (engine.TradeResult, error) {
		return a.game.Buy(cmd.Context(), req)
	})
}

func (a *app) sellCmd() *cobra.Command {
	return a.tradeCmd("sell", "Sell your oldest stock at the local price", func(cmd *cobra.Command, req engine.TradeRequest) (engine.TradeResult, error) {
		return a.game.Sell(cmd.Context(), req)
	})
}

func (a *app) inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <session>",
		Short: "List the lots you hold, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lots, err := a.game.Inventory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printLots(lots, a.game.Tuning.InventoryCapacity)
			return nil
		},
	}
}

func (a *app) travelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "travel <session> <location>",
		Short: "Travel to another town; each day on the road is a turn",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.game.Travel(cmd.Context(), args[0], args[1])
			for _, report := range res.Turns {
				printTurn(a.game, report)
			}
			if err != nil {
				return err
			}
			if res.Arrived {
				heading.Printf("Arrived in %s after %d days.\n", res.To, res.Days)
			} else {
				warn.Printf("The season ended before you reached %s.\n", res.To)
			}
			return nil
		},
	}
}

func (a *app) locationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List the towns on the map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLocations(a.game.Catalog.Locations, a.game.Tuning.TravelTilesPerDay)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <session> <resource>",
		Short: "Show a resource's daily price history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := a.game.History(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printHistory(hist)
			return nil
		},
	}
}

func (a *app) eventsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "events <session>",
		Short: "List world events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.game.Events(cmd.Context(), args[0], !all)
			if err != nil {
				return err
			}
			printEvents(views)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include expired events")
	return cmd
}

func (a *app) journalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal <session>",
		Short: "Show the newest journal entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.game.Journal(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			printJournal(recs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "entries to show (0 = all)")
	return cmd
}

func (a *app) buddyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buddy",
		Short: "Hire buddies and leave them stock to sell",
	}

	hire := &cobra.Command{
		Use:   "hire <session> [name]",
		Short: "Hire a buddy at your current location",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			b, err := a.game.HireBuddy(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			heading.Printf("Hired %s (#%d) in %s.\n", b.Name, b.ID, b.LocationID)
			return nil
		},
	}

	assign := &cobra.Command{
		Use:   "assign <session> <buddy> <resource> <quantity> <target-percent>",
		Short: "Hand stock to an idle buddy with a profit target",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("buddy id %q is not a number", args[1])
			}
			qty, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[3])
			}
			target, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return fmt.Errorf("target %q is not a number", args[4])
			}
			b, err := a.game.AssignBuddy(cmd.Context(), engine.AssignRequest{
				SessionID:     args[0],
				BuddyID:       id,
				ResourceID:    args[2],
				Quantity:      qty,
				TargetPercent: target,
			})
			if err != nil {
				return err
			}
			heading.Printf("%s holds %d %s and sells at %s or better.\n",
				b.Name, b.Quantity, b.ResourceID, economy.FormatCents(b.TargetPrice()))
			return nil
		},
	}

	collect := &cobra.Command{
		Use:   "collect <session> <buddy>",
		Short: "Collect a buddy's sale proceeds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("buddy id %q is not a number", args[1])
			}
			payout, err := a.game.CollectBuddy(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			good.Printf("Collected %s.\n", economy.FormatCents(payout))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <session>",
		Short: "List your buddies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crew, err := a.game.Buddies(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printBuddies(crew)
			return nil
		},
	}

	log := &cobra.Command{
		Use:   "log <session> <buddy>",
		Short: "Show one buddy's journal entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("buddy id %q is not a number", args[1])
			}
			recs, err := a.game.BuddyJournal(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			printJournal(recs)
			return nil
		},
	}

	cmd.AddCommand(hire, assign, collect, list, log)
	return cmd
}
