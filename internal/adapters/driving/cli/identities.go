package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kinde-purge/internal/core/services"
	"github.com/custodia-labs/kinde-purge/internal/logger"
)

var flagOrgCode string

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Delete every identity of every user in one organisation",
	Long: `Enumerate the organisation's users, then each user's identities, and
delete the identities one by one. Users are processed strictly in
sequence with position/total progress reporting.

Individual delete failures are counted and reported but do not stop the
run; the command exits non-zero when any deletion failed.

Examples:
  kinde-purge identities --org acme_corp --confirm`,
	Args: cobra.NoArgs,
	RunE: runIdentities,
}

func init() {
	identitiesCmd.Flags().StringVar(&flagOrgCode, "org", "", "organisation code (falls back to org_code from config)")
	rootCmd.AddCommand(identitiesCmd)
}

func runIdentities(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("org") {
		cfg.OrgCode = flagOrgCode
	}

	purger := services.NewPurger(newClient(cfg), services.Options{
		Confirm: cfg.Confirm,
		DryRun:  cfg.DryRun,
		Logger:  logger.New(os.Stderr, cfg.LogJSON),
	})

	totals, err := purger.PurgeOrganizationIdentities(cmd.Context(), cfg.OrgCode)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		cmd.Printf("Dry run: %d identities across %d users would be deleted.\n",
			totals.IdentitiesProcessed, totals.UsersProcessed)
		return nil
	}
	cmd.Printf("Users processed: %d, identities processed: %d, deleted: %d, failed: %d\n",
		totals.UsersProcessed, totals.IdentitiesProcessed,
		totals.IdentitiesDeleted, totals.IdentitiesFailed)
	return failedErr(totals.IdentitiesFailed)
}
