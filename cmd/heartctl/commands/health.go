package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/heartcheck/internal/cli"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	Long: `Call GET /health and print the answer.

Example:
  heartctl health --base-url http://localhost:5000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFmt, err := outputFormat()
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		h, err := c.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if quiet {
			fmt.Println(h.Status)
			return nil
		}
		return cli.PrintHealth(os.Stdout, h, outFmt)
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Describe the model the server loaded",
	Long: `Call GET /v1/model and print the artifact kinds and fingerprint.

Example:
  heartctl model --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFmt, err := outputFormat()
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		info, err := c.ModelInfo(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get model info: %w", err)
		}
		if quiet {
			fmt.Println(info.Fingerprint)
			return nil
		}
		return cli.PrintModelInfo(os.Stdout, info, outFmt)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(modelCmd)
}
