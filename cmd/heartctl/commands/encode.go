package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/cli"
	"github.com/TimurManjosov/heartcheck/internal/features"
	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

var (
	encodeColumns string
	encodeScaler  string
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a record into the model's feature vector",
	Long: `Validate and one-hot encode a patient record against a column schema
without contacting a server. With --scaler the scaled vector is printed
instead.

Examples:
  heartctl encode patient.yaml --columns artifacts/columns.json
  heartctl encode - --scaler artifacts/scaler.json < patient.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeColumns, "columns", "artifacts/columns.json", "Column schema file")
	encodeCmd.Flags().StringVar(&encodeScaler, "scaler", "", "Scaler file; prints scaled values when set")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	outFmt, err := outputFormat()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(encodeColumns)
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}
	schema, err := artifact.ParseSchema(data)
	if err != nil {
		return err
	}
	enc, err := features.NewEncoder(schema)
	if err != nil {
		return err
	}

	var scaler artifact.Scaler
	if encodeScaler != "" {
		data, err := os.ReadFile(encodeScaler)
		if err != nil {
			return fmt.Errorf("failed to read scaler: %w", err)
		}
		if scaler, _, err = artifact.ParseScaler(data); err != nil {
			return err
		}
	}

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	recs, err := cli.LoadRecords(path)
	if err != nil {
		return err
	}

	for i, m := range recs {
		raw, err := cli.ToRaw(m)
		if err != nil {
			return err
		}
		rec, err := validation.ParseRecord(raw)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		vec, err := enc.Encode(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if scaler != nil {
			if vec, err = inference.Scale(vec, scaler); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
		}
		if err := cli.PrintVector(os.Stdout, schema, vec, outFmt); err != nil {
			return err
		}
	}
	return nil
}
