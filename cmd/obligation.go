package cmd

import (
	"context"
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/handler/views"
	"lendcore/pkg/lending"
	obligationservice "lendcore/service/obligation"

	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func printObligation(ctx context.Context, cmd *cobra.Command, banks core.IBankStore, ob *core.Obligation) error {
	m, err := obligationservice.LoadBanks(ctx, banks, ob)
	if err != nil {
		return err
	}

	printJSON(cmd, views.ObligationView(ob, m))
	return nil
}

func traceID(cmd *cobra.Command) string {
	if id, _ := cmd.Flags().GetString("trace"); id != "" {
		return id
	}

	return uuid.New()
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", core.ErrInvalidArgument, s)
	}

	return amount, nil
}

var obligationCmd = &cobra.Command{
	Use:     "obligation",
	Aliases: []string{"ob"},
	Short:   "manage obligations",
}

var obligationCreateCmd = &cobra.Command{
	Use:   "create <owner>",
	Short: "open an obligation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		ob, err := provideServices(s).obligations.Create(ctx, &core.CreateObligationRequest{Owner: args[0]})
		if err != nil {
			return err
		}

		return printObligation(ctx, cmd, s.banks, ob)
	},
}

var obligationShowCmd = &cobra.Command{
	Use:   "show <obligation>",
	Short: "show the balances of an obligation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		ob, err := s.obligations.Find(ctx, args[0])
		if err != nil {
			return err
		}

		return printObligation(ctx, cmd, s.banks, ob)
	},
}

var obligationHealthCmd = &cobra.Command{
	Use:   "health <obligation>",
	Short: "value an obligation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		ob, err := s.obligations.Find(ctx, args[0])
		if err != nil {
			return err
		}

		banks, err := obligationservice.LoadBanks(ctx, s.banks, ob)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, bank := range banks {
			lending.AccrueInterest(bank, now)
		}

		req, _ := cmd.Flags().GetString("requirement")
		health, err := provideServices(s).risk.Health(ctx, ob, banks, core.RequirementType(req), now)
		if err != nil {
			return err
		}

		printJSON(cmd, health)
		return nil
	},
}

type mutationFunc func(ctx context.Context, srv core.IObligationService, m *core.Mutation) (*core.Obligation, error)

// mutationCmd takes <obligation> <bank> [amount]; the amount may be omitted with --all
func mutationCmd(use, short string, withAll bool, build func(trace, ob, bank string, amount decimal.Decimal, all bool) (*core.Mutation, error), apply mutationFunc) *cobra.Command {
	args := cobra.ExactArgs(3)
	if withAll {
		args = cobra.RangeArgs(2, 3)
	}

	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
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

			m, err := build(traceID(cmd), args[0], args[1], amount, all)
			if err != nil {
				return err
			}

			database := provideDatabase()
			defer database.Close()

			s := provideStores(database)
			ob, err := apply(ctx, provideServices(s).obligations, m)
			if err != nil {
				return err
			}

			return printObligation(ctx, cmd, s.banks, ob)
		},
	}

	c.Flags().String("trace", "", "trace id, a replayed trace id is rejected")
	if withAll {
		c.Flags().Bool("all", false, "the whole balance")
	}

	return c
}

func init() {
	obligationHealthCmd.Flags().String("requirement", string(core.RequirementMaintenance), "initial, maintenance or equity")

	obligationCmd.AddCommand(
		obligationCreateCmd,
		obligationShowCmd,
		obligationHealthCmd,
		mutationCmd("deposit <obligation> <bank> <amount>", "deposit into a bank", false,
			func(trace, ob, bank string, amount decimal.Decimal, _ bool) (*core.Mutation, error) {
				return core.NewDeposit(trace, ob, bank, amount)
			},
			func(ctx context.Context, srv core.IObligationService, m *core.Mutation) (*core.Obligation, error) {
				return srv.Deposit(ctx, m)
			}),
		mutationCmd("withdraw <obligation> <bank> [amount]", "withdraw a deposit", true,
			core.NewWithdraw,
			func(ctx context.Context, srv core.IObligationService, m *core.Mutation) (*core.Obligation, error) {
				return srv.Withdraw(ctx, m)
			}),
		mutationCmd("borrow <obligation> <bank> <amount>", "borrow from a bank", false,
			func(trace, ob, bank string, amount decimal.Decimal, _ bool) (*core.Mutation, error) {
				return core.NewBorrow(trace, ob, bank, amount)
			},
			func(ctx context.Context, srv core.IObligationService, m *core.Mutation) (*core.Obligation, error) {
				return srv.Borrow(ctx, m)
			}),
		mutationCmd("repay <obligation> <bank> [amount]", "repay a liability", true,
			core.NewRepay,
			func(ctx context.Context, srv core.IObligationService, m *core.Mutation) (*core.Obligation, error) {
				return srv.Repay(ctx, m)
			}),
	)

	closeCmd := &cobra.Command{
		Use:   "close <obligation> <bank>",
		Short: "close a dust balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := core.NewCloseBalance(traceID(cmd), args[0], args[1])
			if err != nil {
				return err
			}

			database := provideDatabase()
			defer database.Close()

			s := provideStores(database)
			ob, err := provideServices(s).obligations.CloseBalance(ctx, m)
			if err != nil {
				return err
			}

			return printObligation(ctx, cmd, s.banks, ob)
		},
	}
	closeCmd.Flags().String("trace", "", "trace id, a replayed trace id is rejected")
	obligationCmd.AddCommand(closeCmd)

	rootCmd.AddCommand(obligationCmd)
}
