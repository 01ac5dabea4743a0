package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/output"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// newAlertsCmd creates the alerts command with the given options.
func newAlertsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage account alerts",
		Long: `List, inspect, and delete E*TRADE alerts.

Examples:
  etrade alerts
  etrade alerts show ALERT_ID
  etrade alerts delete ALERT_ID`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	showCmd := &cobra.Command{
		Use:   "show ALERT_ID",
		Short: "Show a single alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertShow(cmd, opts, args[0])
		},
	}
	showCmd.SilenceUsage = true
	cmd.AddCommand(showCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ALERT_ID",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertDelete(cmd, opts, args[0])
		},
	}
	deleteCmd.SilenceUsage = true
	cmd.AddCommand(deleteCmd)

	return cmd
}

func runAlertsList(cmd *cobra.Command, opts *clientOptions) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.ListAlerts(cmd.Context(), etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch alerts: %w", err)
	}

	alerts := resp.SliceAt("AlertsResponse", "Alert")
	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No alerts")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"ID", "Subject", "Status", "Created"}
	rows := make([][]string, 0, len(alerts))
	for _, alert := range alerts {
		rows = append(rows, []string{
			alert.StringAt("id"),
			alert.StringAt("subject"),
			alert.StringAt("status"),
			alert.StringAt("createTime"),
		})
	}

	return formatter.Table(headers, rows)
}

func runAlertShow(cmd *cobra.Command, opts *clientOptions, alertID string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	resp, err := client.GetAlertDetails(cmd.Context(), alertID, etrade.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to fetch alert: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	return formatter.KeyValues(
		"ID", resp.StringAt("AlertDetailsResponse", "id"),
		"Subject", resp.StringAt("AlertDetailsResponse", "subject"),
		"Message", resp.StringAt("AlertDetailsResponse", "msgText"),
		"Created", resp.StringAt("AlertDetailsResponse", "createTime"),
	)
}

func runAlertDelete(cmd *cobra.Command, opts *clientOptions, alertID string) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	if _, err := client.DeleteAlert(cmd.Context(), alertID, etrade.FormatJSON); err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Alert %s deleted.\n", alertID)
	return nil
}

func init() {
	var opts clientOptions

	alertsCmd := newAlertsCmd(&opts)
	alertsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&opts)
	}
	rootCmd.AddCommand(alertsCmd)
}
