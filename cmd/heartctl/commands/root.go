package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/heartcheck/internal/cli"
	"github.com/TimurManjosov/heartcheck/internal/client"
)

var (
	// Global flags
	baseURL string
	format  string
	quiet   bool
	timeout time.Duration
	retries uint
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "heartctl",
	Short: "CLI tool for the heart disease prediction service",
	Long: `heartctl sends patient records to a heartcheck server and prints the
predictions. It can also encode records offline against a column schema.

Examples:
  heartctl health
  heartctl predict patient.yaml
  heartctl predict --age 40 --sex M --chest-pain ATA --resting-bp 140 \
    --cholesterol 289 --fasting-bs 0 --resting-ecg Normal --max-hr 172 \
    --exercise-angina N --oldpeak 0 --st-slope Up
  heartctl batch patients.yaml --concurrency 8 --format json
  heartctl encode patient.yaml --columns artifacts/columns.json`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the prediction API")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Print only prediction labels")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().UintVar(&retries, "retries", 3, "Attempts per request on transient failures")
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseFormat(format)
}

func newClient() (*client.Client, error) {
	u, err := cli.ResolveBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := client.NewClient(u)
	c.HTTPClient.Timeout = timeout
	c.MaxTries = retries
	return c, nil
}
