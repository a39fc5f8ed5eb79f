package cli

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Normalise()

	r := cfg.Redacted()
	cmd.Printf("host:                %s\n", r.Host)
	cmd.Printf("client_id:           %s\n", r.ClientID)
	cmd.Printf("client_secret:       %s\n", r.ClientSecret)
	cmd.Printf("audience:            %s\n", r.Audience)
	cmd.Printf("org_code:            %s\n", r.OrgCode)
	cmd.Printf("page_size:           %d\n", r.PageSize)
	cmd.Printf("max_retries:         %d\n", r.MaxRetries)
	cmd.Printf("base_delay_ms:       %d\n", r.BaseDelayMS)
	cmd.Printf("requests_per_second: %g\n", r.RequestsPerSecond)
	cmd.Printf("burst:               %d\n", r.Burst)
	cmd.Printf("confirm:             %t\n", r.Confirm)
	return nil
}
