package cmd

import (
	"time"

	"lendcore/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "inspect and override oracle prices",
}

var priceSetCmd = &cobra.Command{
	Use:   "set <oracle> <price> [confidence]",
	Short: "record an oracle reading observed now",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := parseAmount(args[1])
		if err != nil {
			return err
		}

		p := &core.Price{
			OracleID:   args[0],
			Price:      price,
			ObservedAt: time.Now(),
		}

		if len(args) == 3 {
			if p.Confidence, err = parseAmount(args[2]); err != nil {
				return err
			}
		}

		database := provideDatabase()
		defer database.Close()

		if err := provideStores(database).prices.Save(cmd.Context(), p); err != nil {
			return err
		}

		printRow(cmd, p.Reading())
		return nil
	},
}

var priceListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the latest reading of every oracle",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		prices, err := provideStores(database).prices.List(cmd.Context())
		if err != nil {
			return err
		}

		for _, p := range prices {
			cmd.Printf("%-16s %-24s ±%-16s %s\n", p.OracleID, p.Price, p.Confidence, p.ObservedAt.Format(time.RFC3339))
		}

		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events [obligation]",
	Short: "list events in id order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		from := cast.ToInt64(cmd.Flag("from").Value.String())
		limit := cast.ToInt(cmd.Flag("limit").Value.String())

		database := provideDatabase()
		defer database.Close()

		store := provideStores(database).events

		var (
			events []*core.Event
			err    error
		)

		if len(args) == 1 {
			events, err = store.ListByObligation(ctx, args[0], from, limit)
		} else {
			events, err = store.List(ctx, from, limit)
		}

		if err != nil {
			return err
		}

		for _, e := range events {
			cmd.Printf("%-8d %-20s %-36s %-24s %s\n", e.ID, e.Type, e.ObligationID, e.Amount, e.TraceID)
		}

		return nil
	},
}

func init() {
	eventsCmd.Flags().Int64("from", 0, "list events after this id")
	eventsCmd.Flags().Int("limit", 100, "max events")

	priceCmd.AddCommand(priceSetCmd, priceListCmd)
	rootCmd.AddCommand(priceCmd, eventsCmd)
}
