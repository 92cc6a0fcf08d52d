package cmd

import (
	"time"

	"lendcore/core"
	"lendcore/handler/views"

	"github.com/spf13/cobra"
)

type bankRow struct {
	BankID           string `json:"bank_id"`
	Symbol           string `json:"symbol"`
	Kind             string `json:"kind"`
	State            string `json:"state"`
	Deposited        string `json:"deposited"`
	Borrowed         string `json:"borrowed"`
	Utilization      string `json:"utilization"`
	BorrowingAPR     string `json:"borrowing_apr"`
	AppreciationRate string `json:"appreciation_rate,omitempty"`
}

func printBank(cmd *cobra.Command, bank *core.Bank) {
	v := views.BankView(bank)
	row := bankRow{
		BankID:       bank.BankID,
		Symbol:       bank.Symbol,
		Kind:         string(bank.Kind),
		State:        string(bank.OperationalState),
		Deposited:    v.TotalDeposited.String(),
		Borrowed:     v.TotalBorrowed.String(),
		Utilization:  v.UtilizationRate.StringFixed(4),
		BorrowingAPR: v.BorrowingAPR.StringFixed(4),
	}

	if bank.IsStaked() {
		row.AppreciationRate = bank.AppreciationRate.String()
	}

	printRow(cmd, row)
}

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "manage banks",
}

var bankCreateCmd = &cobra.Command{
	Use:   "create <request.json>",
	Short: "create a bank from a json request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req core.CreateBankRequest
		if err := readJSON(args[0], &req); err != nil {
			return err
		}

		database := provideDatabase()
		defer database.Close()

		bank, err := provideServices(provideStores(database)).banks.Create(cmd.Context(), &req)
		if err != nil {
			return err
		}

		printBank(cmd, bank)
		return nil
	},
}

var bankConfigureCmd = &cobra.Command{
	Use:   "configure <bank> <config.json>",
	Short: "replace the risk config of a bank",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var c core.BankConfig
		if err := readJSON(args[1], &c); err != nil {
			return err
		}

		database := provideDatabase()
		defer database.Close()

		bank, err := provideServices(provideStores(database)).banks.Configure(cmd.Context(), args[0], c, time.Now())
		if err != nil {
			return err
		}

		printBank(cmd, bank)
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "list banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		banks, err := provideStores(database).banks.List(cmd.Context())
		if err != nil {
			return err
		}

		for _, bank := range banks {
			printBank(cmd, bank)
		}

		return nil
	},
}

var bankAccrueCmd = &cobra.Command{
	Use:   "accrue <bank>...",
	Short: "accrue interest of banks up to now",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		srv := provideServices(provideStores(database))
		now := time.Now()
		for _, id := range args {
			bank, err := srv.banks.AccrueInterest(cmd.Context(), id, now)
			if err != nil {
				return err
			}

			printBank(cmd, bank)
		}

		return nil
	},
}

var bankRefreshRateCmd = &cobra.Command{
	Use:   "refresh-rate <bank> <pool.json>",
	Short: "refresh the appreciation rate of a staked bank from a stake pool state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pool core.StakePoolState
		if err := readJSON(args[1], &pool); err != nil {
			return err
		}

		database := provideDatabase()
		defer database.Close()

		bank, err := provideServices(provideStores(database)).banks.RefreshAppreciationRate(cmd.Context(), args[0], &pool)
		if err != nil {
			return err
		}

		printBank(cmd, bank)
		return nil
	},
}

var bankStakedSettingsCmd = &cobra.Command{
	Use:   "staked-settings <settings.json>",
	Short: "save the group wide staked settings, the keeper propagates them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var settings core.StakedSettings
		if err := readJSON(args[0], &settings); err != nil {
			return err
		}

		database := provideDatabase()
		defer database.Close()

		return provideServices(provideStores(database)).banks.SaveStakedSettings(cmd.Context(), &settings)
	},
}

var bankPropagateCmd = &cobra.Command{
	Use:   "propagate <bank>",
	Short: "copy the staked settings onto a staked bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		bank, err := provideServices(provideStores(database)).banks.PropagateStakedSettings(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printBank(cmd, bank)
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankCreateCmd, bankConfigureCmd, bankListCmd, bankAccrueCmd, bankRefreshRateCmd, bankStakedSettingsCmd, bankPropagateCmd)
	rootCmd.AddCommand(bankCmd)
}
