// Package cli holds the heartctl helpers shared by its commands: profile
// config, record files and output formatting.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/heartcheck/internal/client"
	"github.com/TimurManjosov/heartcheck/internal/inference"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use table, json or yaml)", s)
	}
}

// BatchRow is one record's outcome in a CLI batch run.
type BatchRow struct {
	Index    int                 `json:"index" yaml:"index"`
	Response *inference.Response `json:"result,omitempty" yaml:"result,omitempty"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// PrintPrediction outputs a single prediction in the specified format
func PrintPrediction(w io.Writer, resp *inference.Response, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, resp)
	case FormatYAML:
		return printYAML(w, resp)
	case FormatTable:
		return printBatchTable(w, []BatchRow{{Response: resp}}, false)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintBatch outputs batch rows in input order
func PrintBatch(w io.Writer, rows []BatchRow, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]BatchRow{"results": rows})
	case FormatYAML:
		return printYAML(w, map[string][]BatchRow{"results": rows})
	case FormatTable:
		return printBatchTable(w, rows, true)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintHealth outputs the server health
func PrintHealth(w io.Writer, h *client.Health, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, h)
	case FormatYAML:
		return printYAML(w, h)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Status", "Message", "Model", "Fingerprint")
		if err := table.Append(h.Status, h.Message, h.Model.Kind, h.Model.Fingerprint); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintModelInfo outputs the loaded artifact description
func PrintModelInfo(w io.Writer, info *client.ModelInfo, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, info)
	case FormatYAML:
		return printYAML(w, info)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Kind", "Scaler", "Features", "Fingerprint", "Loaded At")
		if err := table.Append(info.Kind, info.Scaler, fmt.Sprint(info.Features), info.Fingerprint, info.LoadedAt); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintVector outputs an encoded feature vector next to its column names
func PrintVector(w io.Writer, columns []string, vec []float64, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string]any{"columns": columns, "vector": vec})
	case FormatYAML:
		return printYAML(w, map[string]any{"columns": columns, "vector": vec})
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("#", "Column", "Value")
		for i, col := range columns {
			if err := table.Append(fmt.Sprint(i), col, fmt.Sprintf("%g", vec[i])); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printBatchTable(w io.Writer, rows []BatchRow, withIndex bool) error {
	table := tablewriter.NewWriter(w)

	header := []any{"Prediction", "Text", "P(no disease)", "P(heart disease)", "Confidence", "Error"}
	if withIndex {
		header = append([]any{"#"}, header...)
	}
	table.Header(header...)

	for _, row := range rows {
		cells := []any{"-", "-", "-", "-", "-", row.Error}
		if r := row.Response; r != nil {
			cells = []any{
				fmt.Sprint(r.Prediction),
				r.PredictionText,
				fmt.Sprintf("%.4f", r.Probability.NoDisease),
				fmt.Sprintf("%.4f", r.Probability.HeartDisease),
				fmt.Sprintf("%.1f%%", r.Confidence*100),
				"",
			}
		}
		if withIndex {
			cells = append([]any{fmt.Sprint(row.Index)}, cells...)
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}
