package commands

import (
	"fmt"
	"os"
	"slices"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/heartcheck/internal/cli"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Predict heart disease for a list of records",
	Long: `Send every record in a YAML or JSON list to the server and print one
row per record in input order. Records are sent concurrently; a record that
fails is reported in its row and does not stop the others.

Examples:
  heartctl batch patients.yaml
  heartctl batch patients.json --concurrency 8 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Requests in flight at once")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	outFmt, err := outputFormat()
	if err != nil {
		return err
	}
	if batchConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	recs, err := cli.LoadRecords(args[0])
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := pool.NewWithResults[cli.BatchRow]().WithMaxGoroutines(batchConcurrency)
	for i, rec := range recs {
		p.Go(func() cli.BatchRow {
			row := cli.BatchRow{Index: i}
			resp, err := c.Predict(ctx, rec)
			if err != nil {
				row.Error = err.Error()
			} else {
				row.Response = resp
			}
			return row
		})
	}
	rows := p.Wait()
	slices.SortFunc(rows, func(a, b cli.BatchRow) int { return a.Index - b.Index })

	failed := 0
	for _, row := range rows {
		if row.Response == nil {
			failed++
		}
	}

	if quiet {
		for _, row := range rows {
			if row.Response != nil {
				fmt.Println(row.Response.Prediction)
			} else {
				fmt.Println("error")
			}
		}
	} else if err := cli.PrintBatch(os.Stdout, rows, outFmt); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(rows))
	}
	return nil
}
