package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/heartcheck/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the heartctl configuration file at ~/.heartctl/config.yaml.`,
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Set the default server URL",
	Long: `Store the server URL used when --base-url and HEARTCTL_BASE_URL are unset.

Example:
  heartctl config set-url https://heart.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.SetBaseURL(args[0]); err != nil {
			return fmt.Errorf("failed to set url: %w", err)
		}
		if !quiet {
			configPath, _ := cli.GetConfigPath()
			fmt.Printf("Saved base_url to %s\n", configPath)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cli.GetConfigPath()
		if err != nil {
			return err
		}
		effective, err := cli.ResolveBaseURL(baseURL)
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n", configPath)
		fmt.Printf("base_url:    %s\n", effective)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
