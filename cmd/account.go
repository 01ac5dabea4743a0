package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/output"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// newAccountCmd creates the account command with the given options.
func newAccountCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "View account information",
		Long: `View your E*TRADE accounts, balances, and portfolio positions.

Examples:
  etrade account              # List all accounts
  etrade account balance      # View balance (requires --account or default account)
  etrade account portfolio    # View positions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newBalanceCmd(opts))
	cmd.AddCommand(newPortfolioCmd(opts))

	return cmd
}

func runAccountList(cmd *cobra.Command, opts *clientOptions) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.ListAccounts(cmd.Context(), etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accounts := resp.SliceAt("AccountListResponse", "Accounts", "Account")
	if len(accounts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No accounts found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Account ID Key", "Name", "Type", "Mode", "Status"}
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, []string{
			acc.StringAt("accountIdKey"),
			acc.StringAt("accountName"),
			acc.StringAt("accountType"),
			acc.StringAt("accountMode"),
			acc.StringAt("accountStatus"),
		})
	}

	return formatter.Table(headers, rows)
}

func newBalanceCmd(opts *clientOptions) *cobra.Command {
	var flagAccountID string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "View account balance",
		Long: `View real-time balance figures for an account.

Uses the default account from config if --account is not specified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(flagAccountID)
			if err != nil {
				return err
			}
			return runBalance(cmd, opts, accountID)
		},
	}

	cmd.Flags().StringVarP(&flagAccountID, "account", "a", "", "Account ID key (uses default if configured)")
	cmd.SilenceUsage = true

	return cmd
}

func runBalance(cmd *cobra.Command, opts *clientOptions, accountID string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.GetAccountBalance(cmd.Context(), accountID, nil, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	return formatter.KeyValues(
		"Account", resp.StringAt("BalanceResponse", "accountId"),
		"Account Type", resp.StringAt("BalanceResponse", "accountType"),
		"Net Cash", resp.StringAt("BalanceResponse", "Computed", "netCash"),
		"Cash Buying Power", resp.StringAt("BalanceResponse", "Computed", "cashBuyingPower"),
		"Total Account Value", resp.StringAt("BalanceResponse", "Computed", "RealTimeValues", "totalAccountValue"),
	)
}

func newPortfolioCmd(opts *clientOptions) *cobra.Command {
	var flagAccountID string

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "View portfolio positions",
		Long: `View the positions held in an account.

Uses the default account from config if --account is not specified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(flagAccountID)
			if err != nil {
				return err
			}
			return runPortfolio(cmd, opts, accountID)
		},
	}

	cmd.Flags().StringVarP(&flagAccountID, "account", "a", "", "Account ID key (uses default if configured)")
	cmd.SilenceUsage = true

	return cmd
}

func runPortfolio(cmd *cobra.Command, opts *clientOptions, accountID string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.GetAccountPortfolio(cmd.Context(), accountID, nil, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	positions := resp.SliceAt("PortfolioResponse", "AccountPortfolio", "Position")
	if len(positions) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No positions")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Qty", "Last", "Value", "Total G/L"}
	rows := make([][]string, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, []string{
			pos.StringAt("Product", "symbol"),
			pos.StringAt("quantity"),
			pos.StringAt("Quick", "lastTrade"),
			pos.StringAt("marketValue"),
			pos.StringAt("totalGain"),
		})
	}

	return formatter.Table(headers, rows)
}

func init() {
	var opts clientOptions

	accountCmd := newAccountCmd(&opts)
	accountCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(accountCmd)
}
