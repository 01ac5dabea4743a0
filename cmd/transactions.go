package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/output"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// newTransactionsCmd creates the transactions command with the given options.
func newTransactionsCmd(opts *clientOptions) *cobra.Command {
	var (
		flagAccountID string
		startDate     string
		endDate       string
		count         string
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List account transactions",
		Long: `List transactions for an account, optionally within a date range.

Dates use MMDDYYYY format, matching the upstream API.

Examples:
  etrade transactions
  etrade transactions --start 01012026 --end 01312026
  etrade transactions show TRANSACTION_ID`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(flagAccountID)
			if err != nil {
				return err
			}

			params := map[string]string{}
			if startDate != "" {
				params["startDate"] = startDate
			}
			if endDate != "" {
				params["endDate"] = endDate
			}
			if count != "" {
				params["count"] = count
			}
			return runTransactionsList(cmd, opts, accountID, params)
		},
	}

	cmd.PersistentFlags().StringVarP(&flagAccountID, "account", "a", "", "Account ID key (uses default if configured)")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (MMDDYYYY)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (MMDDYYYY)")
	cmd.Flags().StringVar(&count, "count", "", "Maximum number of transactions")
	cmd.SilenceUsage = true

	showCmd := &cobra.Command{
		Use:   "show TRANSACTION_ID",
		Short: "Show a single transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(flagAccountID)
			if err != nil {
				return err
			}
			return runTransactionShow(cmd, opts, accountID, args[0])
		},
	}
	showCmd.SilenceUsage = true
	cmd.AddCommand(showCmd)

	return cmd
}

func runTransactionsList(cmd *cobra.Command, opts *clientOptions, accountID string, params map[string]string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.ListTransactions(cmd.Context(), accountID, params, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	transactions := resp.SliceAt("TransactionListResponse", "Transaction")
	if len(transactions) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No transactions found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"ID", "Date", "Type", "Description", "Amount"}
	rows := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		rows = append(rows, []string{
			txn.StringAt("transactionId"),
			txn.StringAt("transactionDate"),
			txn.StringAt("transactionType"),
			txn.StringAt("description"),
			txn.StringAt("amount"),
		})
	}

	return formatter.Table(headers, rows)
}

func runTransactionShow(cmd *cobra.Command, opts *clientOptions, accountID, transactionID string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.GetTransactionDetails(cmd.Context(), accountID, transactionID, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch transaction: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	return formatter.KeyValues(
		"ID", resp.StringAt("TransactionDetailsResponse", "transactionId"),
		"Date", resp.StringAt("TransactionDetailsResponse", "transactionDate"),
		"Amount", resp.StringAt("TransactionDetailsResponse", "amount"),
		"Description", resp.StringAt("TransactionDetailsResponse", "description"),
		"Symbol", resp.StringAt("TransactionDetailsResponse", "Category", "symbol"),
	)
}

func init() {
	var opts clientOptions

	transactionsCmd := newTransactionsCmd(&opts)
	transactionsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(transactionsCmd)
}
