package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/output"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// newOrderCmd creates the order command with the given options.
func newOrderCmd(opts *clientOptions) *cobra.Command {
	var flagAccountID string

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
		Long: `List, place, and cancel orders.

Examples:
  etrade order list
  etrade order list --status OPEN
  etrade order place --symbol AAPL --action BUY --quantity 10 --price-type LIMIT --limit 150.00
  etrade order place --symbol PLTR --action BUY_OPEN --quantity 1 --price-type LIMIT --limit 0.45 \
      --call-put PUT --expiry 2026-02-18 --strike 23
  etrade order cancel 529`,
	}

	cmd.PersistentFlags().StringVarP(&flagAccountID, "account", "a", "", "Account ID key (uses default if configured)")
	cmd.SilenceUsage = true

	cmd.AddCommand(newOrderListCmd(opts, &flagAccountID))
	cmd.AddCommand(newOrderPlaceCmd(opts, &flagAccountID))
	cmd.AddCommand(newOrderCancelCmd(opts, &flagAccountID))

	return cmd
}

func newOrderListCmd(opts *clientOptions, flagAccountID *string) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(*flagAccountID)
			if err != nil {
				return err
			}

			params := map[string]string{}
			if status != "" {
				params["status"] = strings.ToUpper(status)
			}
			return runOrderList(cmd, opts, accountID, params)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (OPEN, EXECUTED, CANCELLED, ...)")
	cmd.SilenceUsage = true

	return cmd
}

func runOrderList(cmd *cobra.Command, opts *clientOptions, accountID string, params map[string]string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.ListOrders(cmd.Context(), accountID, params, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	orders := resp.SliceAt("OrdersResponse", "Order")
	if len(orders) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No orders found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Order ID", "Symbol", "Action", "Qty", "Price Type", "Status"}
	rows := make([][]string, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, []string{
			order.StringAt("orderId"),
			order.StringAt("OrderDetail", "Instrument", "Product", "symbol"),
			order.StringAt("OrderDetail", "Instrument", "orderAction"),
			order.StringAt("OrderDetail", "Instrument", "orderedQuantity"),
			order.StringAt("OrderDetail", "priceType"),
			order.StringAt("OrderDetail", "status"),
		})
	}

	return formatter.Table(headers, rows)
}

func newOrderPlaceCmd(opts *clientOptions, flagAccountID *string) *cobra.Command {
	var (
		symbol      string
		action      string
		quantity    int
		priceType   string
		limitPrice  float64
		stopPrice   float64
		term        string
		session     string
		allOrNone   bool
		callPut     string
		expiry      string
		strike      float64
		previewOnly bool
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order",
		Long: `Place an equity or option order.

Every order is previewed before it is placed. Pass --preview to stop
after the preview and inspect the estimated totals without placing.

Option orders need --call-put, --expiry, and --strike in addition to
the equity flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(*flagAccountID)
			if err != nil {
				return err
			}

			req := &etrade.OrderRequest{
				AccountIDKey:  accountID,
				Symbol:        strings.ToUpper(symbol),
				OrderAction:   etrade.OrderAction(strings.ToUpper(action)),
				ClientOrderID: etrade.NewClientOrderID(),
				PriceType:     etrade.PriceType(strings.ToUpper(priceType)),
				Quantity:      quantity,
				OrderTerm:     etrade.OrderTerm(strings.ToUpper(term)),
				MarketSession: etrade.MarketSession(strings.ToUpper(session)),
				LimitPrice:    limitPrice,
				StopPrice:     stopPrice,
				AllOrNone:     allOrNone,
			}
			if callPut != "" {
				req.SecurityType = etrade.SecurityTypeOption
				req.CallPut = etrade.CallPut(strings.ToUpper(callPut))
				req.ExpiryDate = expiry
				req.StrikePrice = strike
			}

			return runOrderPlace(cmd, opts, req, previewOnly)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Ticker symbol (required)")
	cmd.Flags().StringVar(&action, "action", "", "Order action: BUY, SELL, BUY_TO_COVER, SELL_SHORT, BUY_OPEN, SELL_CLOSE (required)")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "Number of shares or contracts (required)")
	cmd.Flags().StringVar(&priceType, "price-type", "", "MARKET, LIMIT, STOP, STOP_LIMIT, MARKET_ON_CLOSE (required)")
	cmd.Flags().Float64Var(&limitPrice, "limit", 0, "Limit price")
	cmd.Flags().Float64Var(&stopPrice, "stop", 0, "Stop price")
	cmd.Flags().StringVar(&term, "term", "GOOD_FOR_DAY", "Order term: GOOD_UNTIL_CANCEL, GOOD_FOR_DAY, IMMEDIATE_OR_CANCEL, FILL_OR_KILL")
	cmd.Flags().StringVar(&session, "session", "REGULAR", "Market session: REGULAR or EXTENDED")
	cmd.Flags().BoolVar(&allOrNone, "all-or-none", false, "Execute only as a single transaction")
	cmd.Flags().StringVar(&callPut, "call-put", "", "CALL or PUT (option orders)")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Option expiry date (option orders)")
	cmd.Flags().Float64Var(&strike, "strike", 0, "Option strike price (option orders)")
	cmd.Flags().BoolVar(&previewOnly, "preview", false, "Preview the order without placing it")
	cmd.SilenceUsage = true

	return cmd
}

func runOrderPlace(cmd *cobra.Command, opts *clientOptions, req *etrade.OrderRequest, previewOnly bool) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)

	if previewOnly {
		resp, err := client.PreviewEquityOrder(cmd.Context(), req, etrade.FormatJSON)
		if err != nil {
			return fmt.Errorf("failed to preview order: %w", err)
		}
		return formatter.KeyValues(
			"Preview ID", resp.StringAt("PreviewOrderResponse", "PreviewIds", "previewId"),
			"Symbol", req.Symbol,
			"Estimated Commission", resp.StringAt("PreviewOrderResponse", "Order", "estimatedCommission"),
			"Estimated Total", resp.StringAt("PreviewOrderResponse", "Order", "estimatedTotalAmount"),
		)
	}

	place := client.PlaceEquityOrder
	if req.SecurityType == etrade.SecurityTypeOption {
		place = client.PlaceOptionOrder
	}

	resp, err := place(cmd.Context(), req, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	return formatter.KeyValues(
		"Order ID", resp.StringAt("PlaceOrderResponse", "OrderIds", "orderId"),
		"Symbol", req.Symbol,
		"Action", string(req.OrderAction),
		"Quantity", strconv.Itoa(req.Quantity),
	)
}

func newOrderCancelCmd(opts *clientOptions, flagAccountID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel an open order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := opts.resolveAccount(*flagAccountID)
			if err != nil {
				return err
			}

			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return runOrderCancel(cmd, opts, accountID, orderID)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runOrderCancel(cmd *cobra.Command, opts *clientOptions, accountID string, orderID int64) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.CancelOrder(cmd.Context(), accountID, orderID, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Order %d cancelled.\n", orderID)
	if msg := resp.StringAt("CancelOrderResponse", "Messages", "Message", "description"); msg != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

func init() {
	var opts clientOptions

	orderCmd := newOrderCmd(&opts)
	orderCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(orderCmd)
}
