package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/TimurManjosov/heartcheck/internal/cli"
	"github.com/TimurManjosov/heartcheck/internal/features"
)

// recordFlags maps each record field to its command-line flag.
var recordFlags = []struct {
	field string
	flag  string
	usage string
}{
	{features.FieldAge, "age", "Age in years"},
	{features.FieldSex, "sex", "Sex (M or F)"},
	{features.FieldChestPainType, "chest-pain", "Chest pain type (ATA, NAP, TA, ASY)"},
	{features.FieldRestingBP, "resting-bp", "Resting blood pressure"},
	{features.FieldCholesterol, "cholesterol", "Serum cholesterol"},
	{features.FieldFastingBS, "fasting-bs", "Fasting blood sugar flag (0 or 1)"},
	{features.FieldRestingECG, "resting-ecg", "Resting ECG (Normal, ST, LVH)"},
	{features.FieldMaxHR, "max-hr", "Maximum heart rate"},
	{features.FieldExerciseAngina, "exercise-angina", "Exercise induced angina (Y or N)"},
	{features.FieldOldpeak, "oldpeak", "ST depression"},
	{features.FieldSTSlope, "st-slope", "ST slope (Up, Flat, Down)"},
}

var predictCmd = &cobra.Command{
	Use:   "predict [file]",
	Short: "Predict heart disease for one patient record",
	Long: `Send one patient record to the server and print the prediction.

The record is read from a YAML or JSON file ("-" for stdin) or built from
flags. Only the flags you set are sent, so the server reports any field
you left out.

Examples:
  heartctl predict patient.json
  cat patient.yaml | heartctl predict -
  heartctl predict --age 40 --sex M --chest-pain ATA ...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

func init() {
	for _, f := range recordFlags {
		if features.IsNumeric(f.field) {
			predictCmd.Flags().Float64(f.flag, 0, f.usage)
		} else {
			predictCmd.Flags().String(f.flag, "", f.usage)
		}
	}
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	outFmt, err := outputFormat()
	if err != nil {
		return err
	}

	var rec map[string]any
	if len(args) == 1 {
		recs, err := cli.LoadRecords(args[0])
		if err != nil {
			return err
		}
		if len(recs) != 1 {
			return fmt.Errorf("%s holds %d records, use 'heartctl batch' for more than one", args[0], len(recs))
		}
		rec = recs[0]
	} else {
		rec = recordFromFlags(cmd.Flags())
		if len(rec) == 0 {
			return fmt.Errorf("provide a record file or at least one field flag")
		}
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	resp, err := c.Predict(cmd.Context(), rec)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if quiet {
		fmt.Println(resp.Prediction)
		return nil
	}
	return cli.PrintPrediction(os.Stdout, resp, outFmt)
}

func recordFromFlags(flags *pflag.FlagSet) map[string]any {
	rec := make(map[string]any)
	for _, f := range recordFlags {
		if !flags.Changed(f.flag) {
			continue
		}
		if features.IsNumeric(f.field) {
			v, _ := flags.GetFloat64(f.flag)
			rec[f.field] = v
		} else {
			v, _ := flags.GetString(f.flag)
			rec[f.field] = v
		}
	}
	return rec
}
