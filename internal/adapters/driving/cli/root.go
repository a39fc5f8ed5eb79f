// Package cli wires the purge flows to cobra commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kinde-purge/internal/config"
	"github.com/custodia-labs/kinde-purge/internal/kinde"
	"github.com/custodia-labs/kinde-purge/internal/logger"
)

// version is set by goreleaser ldflags.
var version = "dev"

// Persistent flags.
var (
	configPath string
	verbose    bool
	logJSON    bool

	flagHost         string
	flagClientID     string
	flagClientSecret string
	flagAudience     string
	flagPageSize     int
	flagMaxRetries   int
	flagBaseDelayMS  int
	flagConfirm      bool
	flagDryRun       bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "kinde-purge",
	Short: "Bulk-delete users and identities from a Kinde business",
	Long: `kinde-purge authenticates against a Kinde business with M2M client
credentials and bulk-deletes resources discovered through pagination:
every user in the business, or every identity of every user in one
organisation.

Destructive flows refuse to run without --confirm. Use --dry-run to see
what would be deleted without issuing a single delete call.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON lines")

	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "business base URL, e.g. https://acme.kinde.com")
	rootCmd.PersistentFlags().StringVar(&flagClientID, "client-id", "", "M2M application client id")
	rootCmd.PersistentFlags().StringVar(&flagClientSecret, "client-secret", "",
		"M2M application client secret (prompted when omitted on a terminal)")
	rootCmd.PersistentFlags().StringVar(&flagAudience, "audience", "",
		"API audience for the token exchange (defaults to <host>/api)")
	rootCmd.PersistentFlags().IntVar(&flagPageSize, "page-size", 0, "page size for list requests")
	rootCmd.PersistentFlags().IntVar(&flagMaxRetries, "max-retries", -1,
		"retries per request on rate-limit or server errors")
	rootCmd.PersistentFlags().IntVar(&flagBaseDelayMS, "base-delay-ms", 0, "first backoff delay in milliseconds")
	rootCmd.PersistentFlags().BoolVar(&flagConfirm, "confirm", false, "confirm the destructive run")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "enumerate without deleting")

	// Set verbose mode before any command executes.
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}

// loadConfig builds the effective configuration for a flow that calls
// the API: the layered configuration plus an interactive secret prompt
// when the secret is still missing, validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.ClientSecret == "" {
		if secret, ok := promptSecret(cmd); ok {
			cfg.ClientSecret = secret
		}
	}

	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildConfig layers the configuration sources: file, then environment,
// then any flags that were set on the command line. It neither prompts
// nor validates, so inspection commands can use it as-is.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = flagHost
	}
	if flags.Changed("client-id") {
		cfg.ClientID = flagClientID
	}
	if flags.Changed("client-secret") {
		cfg.ClientSecret = flagClientSecret
	}
	if flags.Changed("audience") {
		cfg.Audience = flagAudience
	}
	if flags.Changed("page-size") {
		cfg.PageSize = flagPageSize
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = flagMaxRetries
	}
	if flags.Changed("base-delay-ms") {
		cfg.BaseDelayMS = flagBaseDelayMS
	}
	if flags.Changed("confirm") {
		cfg.Confirm = flagConfirm
	}
	cfg.DryRun = flagDryRun
	cfg.LogJSON = logJSON
	return cfg, nil
}

// promptSecret asks for the client secret without echo when stdin is a
// terminal. Returns false in non-interactive runs.
func promptSecret(cmd *cobra.Command) (string, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false
	}
	cmd.Print("Client secret: ")
	secret, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", false
	}
	return string(secret), true
}

// newClient builds a management API client from the configuration.
func newClient(cfg *config.Config) *kinde.Client {
	return kinde.New(kinde.Options{
		BaseURL:           cfg.Host,
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		Audience:          cfg.Audience,
		PageSize:          cfg.PageSize,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         time.Duration(cfg.BaseDelayMS) * time.Millisecond,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            logger.New(os.Stderr, cfg.LogJSON),
	})
}

// failedErr maps a failure count to the process exit contract: any
// failed deletion makes the whole run exit non-zero.
func failedErr(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d deletions failed", failed)
}
