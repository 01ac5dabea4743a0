package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/output"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts *clientOptions) *cobra.Command {
	var detailFlag string

	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get market quotes",
		Long: `Get quotes for one or more symbols (up to 25 per request).

Examples:
  etrade quote AAPL
  etrade quote AAPL GOOGL PLTR --detail INTRADAY`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts, args, detailFlag)
		},
	}

	cmd.Flags().StringVar(&detailFlag, "detail", "", "Detail level (ALL, FUNDAMENTAL, INTRADAY, OPTIONS, WEEK_52)")
	cmd.SilenceUsage = true

	return cmd
}

func runQuote(cmd *cobra.Command, opts *clientOptions, symbols []string, detailFlag string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	var quoteOpts *etrade.QuoteOptions
	if detailFlag != "" {
		quoteOpts = &etrade.QuoteOptions{DetailFlag: detailFlag}
	}

	resp, err := client.GetQuote(cmd.Context(), symbols, quoteOpts, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}

	quotes := resp.SliceAt("QuoteResponse", "QuoteData")
	if len(quotes) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No quotes found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Last", "Bid", "Ask", "Change %", "Volume"}
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			q.StringAt("Product", "symbol"),
			q.StringAt("All", "lastTrade"),
			q.StringAt("All", "bid"),
			q.StringAt("All", "ask"),
			q.StringAt("All", "changeClosePercentage"),
			q.StringAt("All", "totalVolume"),
		})
	}

	return formatter.Table(headers, rows)
}

// newLookupCmd creates the lookup command with the given options.
func newLookupCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup QUERY",
		Short: "Look up products by company name",
		Long: `Search for tradable products matching a company name.

Example:
  etrade lookup palantir`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, args[0])
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runLookup(cmd *cobra.Command, opts *clientOptions, query string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.LookUpProduct(cmd.Context(), query, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to look up products: %w", err)
	}

	results := resp.SliceAt("LookupResponse", "Data")
	if len(results) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matches found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Description", "Type"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.StringAt("symbol"),
			res.StringAt("description"),
			res.StringAt("type"),
		})
	}

	return formatter.Table(headers, rows)
}

func init() {
	var opts clientOptions

	quoteCmd := newQuoteCmd(&opts)
	quoteCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(quoteCmd)

	lookupCmd := newLookupCmd(&opts)
	lookupCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(lookupCmd)
}
