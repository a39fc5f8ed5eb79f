package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kinde-purge/internal/core/services"
	"github.com/custodia-labs/kinde-purge/internal/logger"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Delete every user in the business",
	Long: `Enumerate every user through pagination and delete each one.

Individual delete failures are counted and reported but do not stop the
run; the command exits non-zero when any deletion failed.

Examples:
  # See what would be deleted
  kinde-purge users --host https://acme.kinde.com --client-id ... --dry-run

  # Delete everything
  kinde-purge users --host https://acme.kinde.com --client-id ... --confirm`,
	Args: cobra.NoArgs,
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	purger := services.NewPurger(newClient(cfg), services.Options{
		Confirm: cfg.Confirm,
		DryRun:  cfg.DryRun,
		Logger:  logger.New(os.Stderr, cfg.LogJSON),
	})

	result, err := purger.PurgeUsers(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.DryRun {
		cmd.Printf("Dry run: %d users would be deleted.\n", result.Processed)
		return nil
	}
	cmd.Printf("Users processed: %d, deleted: %d, failed: %d\n",
		result.Processed, result.Deleted, result.Failed)
	return failedErr(result.Failed)
}
