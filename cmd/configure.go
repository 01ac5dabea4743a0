package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonandersen/etrade/internal/config"
	"github.com/jonandersen/etrade/internal/keyring"
)

// passwordReader abstracts terminal password input for testing.
type passwordReader interface {
	ReadPassword() (string, error)
	IsTerminal() bool
}

// terminalReader reads passwords from the terminal using golang.org/x/term.
type terminalReader struct {
	fd int
}

// newTerminalReader creates a reader for the given file descriptor.
func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) ReadPassword() (string, error) {
	password, err := term.ReadPassword(r.fd)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts interactive input for testing.
type prompter interface {
	SelectOption(options []string) (int, error)
	ReadLine(prompt string) (string, error)
}

// terminalPrompter implements prompter using stdin.
type terminalPrompter struct {
	reader io.Reader
	writer io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{reader: r, writer: w}
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	scanner := bufio.NewScanner(p.reader)
	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no input")
		}
		input := strings.TrimSpace(scanner.Text())
		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil // Convert to 0-indexed
	}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// configureOptions holds dependencies for the configure command.
// This allows for dependency injection in tests.
type configureOptions struct {
	configPath     string
	store          keyring.Store
	passwordReader passwordReader
	prompt         prompter
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts configureOptions) *cobra.Command {
	var (
		accountIDKey string
		live         bool
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure CLI credentials",
		Long: `Configure the CLI with your E*TRADE consumer credentials.

You will be prompted to enter your consumer key and secret.
Get them from: https://developer.etrade.com

The CLI starts in the sandbox environment; pass --live to trade
against the production API.

Example:
  etrade configure
  etrade configure --live --account YOUR_ACCOUNT_ID_KEY`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, opts, accountIDKey, live)
		},
	}

	cmd.Flags().StringVar(&accountIDKey, "account", "", "Default account ID key (optional)")
	cmd.Flags().BoolVar(&live, "live", false, "Use the production environment instead of the sandbox")

	// Don't show usage info on validation errors - just show the error
	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Configure new consumer credentials",
	"View current configuration",
	"Clear stored credentials",
}

func runConfigure(cmd *cobra.Command, opts configureOptions, accountIDKey string, live bool) error {
	// Verify we're running in an interactive terminal
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nRun this command directly in your terminal (not piped or in a script)")
	}

	// Check if already configured
	_, err := opts.store.Get(keyring.ServiceName, keyring.KeyConsumerKey)
	alreadyConfigured := err == nil

	if alreadyConfigured {
		return runReconfigureMenu(cmd, opts, accountIDKey, live)
	}

	return runInitialSetup(cmd, opts, accountIDKey, live)
}

// runReconfigureMenu shows the reconfigure menu when already configured.
func runReconfigureMenu(cmd *cobra.Command, opts configureOptions, accountIDKey string, live bool) error {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "CLI is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0: // Configure new consumer credentials
		return runInitialSetup(cmd, opts, accountIDKey, live)
	case 1: // View current configuration
		return runViewConfiguration(cmd, opts)
	case 2: // Clear stored credentials
		return runClearCredentials(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

// runInitialSetup handles the consumer credential configuration.
func runInitialSetup(cmd *cobra.Command, opts configureOptions, accountIDKey string, live bool) error {
	consumerKey, err := opts.prompt.ReadLine("Enter your consumer key: ")
	if err != nil {
		return fmt.Errorf("failed to read consumer key: %w", err)
	}
	if consumerKey == "" {
		return fmt.Errorf("consumer key cannot be empty")
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Enter your consumer secret: ")
	consumerSecret, err := opts.passwordReader.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read consumer secret: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout()) // Print newline after hidden input

	if consumerSecret == "" {
		return fmt.Errorf("consumer secret cannot be empty")
	}

	if err := keyring.SaveConsumerCredentials(opts.store, consumerKey, consumerSecret); err != nil {
		return err
	}

	// Load existing config or create new one
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	cfg.Sandbox = !live
	if accountIDKey != "" {
		cfg.AccountIDKey = accountIDKey
	}

	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved successfully!")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'etrade login' to authorize the CLI with your account.")
	return nil
}

// runViewConfiguration displays the current configuration.
func runViewConfiguration(cmd *cobra.Command, opts configureOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Current Configuration:")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "----------------------")

	if _, err := opts.store.Get(keyring.ServiceName, keyring.KeyConsumerKey); err == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Consumer key: Configured")
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Consumer key: Not configured")
	}

	if _, err := opts.store.Get(keyring.ServiceName, keyring.KeyAccessToken); err == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Access token: Configured")
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Access token: Not configured (run 'etrade login')")
	}

	if cfg.AccountIDKey != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default account: %s\n", cfg.AccountIDKey)
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Default account: Not set")
	}

	env := "production"
	if cfg.Sandbox {
		env = "sandbox"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Environment: %s\n", env)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Request timeout: %d seconds\n", cfg.TimeoutSeconds)

	return nil
}

// runClearCredentials removes all stored credentials.
func runClearCredentials(cmd *cobra.Command, opts configureOptions) error {
	for _, key := range []string{
		keyring.KeyConsumerKey,
		keyring.KeyConsumerSecret,
		keyring.KeyAccessToken,
		keyring.KeyAccessSecret,
	} {
		if err := opts.store.Delete(keyring.ServiceName, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Stored credentials cleared successfully.")
	return nil
}

func init() {
	// Create configure command with production dependencies
	configureCmd := newConfigureCmd(configureOptions{
		configPath:     config.ConfigPath(),
		store:          keyring.NewEnvStore(keyring.NewSystemStore()),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
	})
	rootCmd.AddCommand(configureCmd)
}
