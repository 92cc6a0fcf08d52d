package cmd

import (
	"fmt"
	"time"

	"lendcore/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func requireAdapter(srv *services) (core.IExternalAdapter, error) {
	if srv.adapter == nil {
		return nil, fmt.Errorf("%w: external.endpoint is not configured", core.ErrInvalidArgument)
	}

	return srv.adapter, nil
}

var wrappedCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "move funds in and out of an external market position",
}

var wrappedDepositCmd = &cobra.Command{
	Use:   "deposit <obligation> <bank> <amount>",
	Short: "deposit into the external position backing a wrapped balance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}

		external, _ := cmd.Flags().GetString("external")
		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		a, err := requireAdapter(provideServices(s))
		if err != nil {
			return err
		}

		session, err := a.Begin(ctx, args[0], args[1], external)
		if err != nil {
			return err
		}

		if err := session.RefreshReserve(ctx); err != nil {
			return err
		}

		if err := session.RefreshObligation(ctx); err != nil {
			return err
		}

		ob, err := s.obligations.Find(ctx, args[0])
		if err != nil {
			return err
		}

		if external == "" {
			if b := ob.FindBalance(args[1]); b != nil {
				external = b.ExternalObligationID
			}
		}

		m, err := core.NewWrappedDeposit(traceID(cmd), args[0], args[1], external, amount)
		if err != nil {
			return err
		}

		if ob, err = session.Deposit(ctx, m); err != nil {
			return err
		}

		return printObligation(ctx, cmd, s.banks, ob)
	},
}

var wrappedWithdrawCmd = &cobra.Command{
	Use:   "withdraw <obligation> <bank> [amount]",
	Short: "withdraw from the external position backing a wrapped balance",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		all, _ := cmd.Flags().GetBool("all")
		amount := decimal.Zero
		if len(args) == 3 {
			v, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			amount = v
		} else if !all {
			return fmt.Errorf("%w: amount or --all required", core.ErrInvalidArgument)
		}

		m, err := core.NewWrappedWithdraw(traceID(cmd), args[0], args[1], amount, all)
		if err != nil {
			return err
		}

		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		a, err := requireAdapter(provideServices(s))
		if err != nil {
			return err
		}

		session, err := a.Begin(ctx, args[0], args[1], "")
		if err != nil {
			return err
		}

		if err := session.RefreshReserve(ctx); err != nil {
			return err
		}

		if err := session.RefreshObligation(ctx); err != nil {
			return err
		}

		ob, err := session.Withdraw(ctx, m)
		if err != nil {
			return err
		}

		return printObligation(ctx, cmd, s.banks, ob)
	},
}

var wrappedRefreshCmd = &cobra.Command{
	Use:   "refresh <obligation> <bank>",
	Short: "record the external market value of a wrapped balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		a, err := requireAdapter(provideServices(s))
		if err != nil {
			return err
		}

		ob, err := a.RefreshExternalValuation(ctx, args[0], args[1], time.Now())
		if err != nil {
			return err
		}

		return printObligation(ctx, cmd, s.banks, ob)
	},
}

func init() {
	wrappedDepositCmd.Flags().String("external", "", "external obligation, required for the first deposit")
	wrappedDepositCmd.Flags().String("trace", "", "trace id, a replayed trace id is rejected")
	wrappedWithdrawCmd.Flags().Bool("all", false, "the whole position")
	wrappedWithdrawCmd.Flags().String("trace", "", "trace id, a replayed trace id is rejected")

	wrappedCmd.AddCommand(wrappedDepositCmd, wrappedWithdrawCmd, wrappedRefreshCmd)
	rootCmd.AddCommand(wrappedCmd)
}
