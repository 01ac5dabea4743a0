package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonandersen/etrade/internal/config"
	"github.com/jonandersen/etrade/internal/keyring"
	"github.com/jonandersen/etrade/pkg/etrade"
)

var Version = "dev"

// jsonOutput controls whether output is formatted as JSON
var jsonOutput bool

// verbose enables debug logging to stderr
var verbose bool

var rootCmd = &cobra.Command{
	Use:     "etrade",
	Short:   "E*TRADE Trading CLI",
	Long:    `A CLI for accounts, quotes, alerts, and order management via the E*TRADE REST API.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

// newLogger returns the CLI logger. It writes to stderr so debug
// output never mixes with command output.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// clientOptions holds shared dependencies for API-backed commands.
// This allows for dependency injection in tests.
type clientOptions struct {
	newClient        func() (*etrade.Client, error)
	jsonMode         bool
	defaultAccountID string
}

// resolveAccount picks the account id key from the flag or the config
// default.
func (o *clientOptions) resolveAccount(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if o.defaultAccountID != "" {
		return o.defaultAccountID, nil
	}
	return "", fmt.Errorf("account ID key is required (use --account flag or set default with 'etrade configure')")
}

// loadClientOptions fills opts from the config file and keyring. Used
// by the production command wiring in init funcs.
func loadClientOptions(opts *clientOptions) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store := keyring.NewEnvStore(keyring.NewSystemStore())

	opts.jsonMode = GetJSONMode()
	opts.defaultAccountID = cfg.AccountIDKey
	opts.newClient = func() (*etrade.Client, error) {
		creds, err := keyring.LoadCredentials(store)
		if err != nil {
			return nil, err
		}
		clientOpts := []etrade.Option{
			etrade.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
			etrade.WithLogger(newLogger()),
		}
		if cfg.Sandbox {
			clientOpts = append(clientOpts, etrade.WithSandbox())
		}
		return etrade.NewClient(creds, clientOpts...), nil
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
