package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/keyring"
	"github.com/jonandersen/etrade/pkg/etrade"
)

// loginOptions holds dependencies for the login command.
// This allows for dependency injection in tests.
type loginOptions struct {
	store   keyring.Store
	prompt  prompter
	newFlow func(consumerKey, consumerSecret string) *etrade.OAuthFlow
	client  *clientOptions
}

// newLoginCmd creates the login command with the given options.
func newLoginCmd(opts loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize the CLI with your E*TRADE account",
		Long: `Run the OAuth authorization flow.

Prints an authorization URL to open in your browser. After approving
access, E*TRADE shows a verification code; paste it back here to
complete the login. Access tokens expire at midnight US Eastern time,
so expect to log in once per trading day (or use 'login renew').

Example:
  etrade login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newRenewCmd(opts))
	cmd.AddCommand(newRevokeCmd(opts))

	return cmd
}

func runLogin(cmd *cobra.Command, opts loginOptions) error {
	consumerKey, err := opts.store.Get(keyring.ServiceName, keyring.KeyConsumerKey)
	if err != nil {
		return fmt.Errorf("consumer key not found, run 'etrade configure' first")
	}
	consumerSecret, err := opts.store.Get(keyring.ServiceName, keyring.KeyConsumerSecret)
	if err != nil {
		return fmt.Errorf("consumer secret not found, run 'etrade configure' first")
	}

	flow := opts.newFlow(consumerKey, consumerSecret)

	authURL, err := flow.AuthorizationURL()
	if err != nil {
		return fmt.Errorf("failed to get authorization URL: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Open this URL in your browser and approve access:")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", authURL)
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	verifier, err := opts.prompt.ReadLine("Enter the verification code: ")
	if err != nil {
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	if verifier == "" {
		return fmt.Errorf("verification code cannot be empty")
	}

	creds, err := flow.AccessToken(verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange verification code: %w", err)
	}

	if err := keyring.SaveAccessCredentials(opts.store, creds.AccessToken, creds.AccessSecret); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Login successful! Access tokens stored.")
	return nil
}

func newRenewCmd(opts loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew the stored access token",
		Long: `Renew the current access token.

Tokens go inactive after two hours without use; renewing reactivates
them without a full browser round trip. A token that has expired
(midnight US Eastern) cannot be renewed; run 'etrade login' instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client.newClient()
			if err != nil {
				return err
			}
			if err := client.RenewAccessToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to renew access token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Access token renewed.")
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func newRevokeCmd(opts loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client.newClient()
			if err != nil {
				return err
			}
			if err := client.RevokeAccessToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to revoke access token: %w", err)
			}
			if err := keyring.DeleteAccessCredentials(opts.store); err != nil {
				return fmt.Errorf("failed to clear access tokens: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Access token revoked and cleared.")
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func init() {
	var copts clientOptions

	opts := loginOptions{
		store:   keyring.NewEnvStore(keyring.NewSystemStore()),
		prompt:  newTerminalPrompter(os.Stdin, os.Stdout),
		newFlow: etrade.NewOAuthFlow,
		client:  &copts,
	}

	loginCmd := newLoginCmd(opts)
	loginCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(&copts)
	}
	rootCmd.AddCommand(loginCmd)
}
