package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TimurManjosov/heartcheck/internal/inference"
)

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"json object", `{"Age":40,"Sex":"M"}`, 1, false},
		{"json list", `[{"Age":40},{"Age":50}]`, 2, false},
		{"yaml object", "Age: 40\nSex: M\n", 1, false},
		{"yaml list", "- Age: 40\n- Age: 50\n- Age: 60\n", 3, false},
		{"records key", `{"records":[{"Age":40}]}`, 1, false},
		{"empty list", `[]`, 0, true},
		{"empty document", ``, 0, true},
		{"scalar", `42`, 0, true},
		{"list of scalars", `[1,2]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ParseRecords([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(recs) != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, len(recs))
			}
		})
	}
}

func TestParseRecords_EmptyIsErrNoRecords(t *testing.T) {
	if _, err := ParseRecords([]byte(`[]`)); !errors.Is(err, ErrNoRecords) {
		t.Errorf("Expected ErrNoRecords, got %v", err)
	}
}

func TestToRaw_KeepsJSONTypes(t *testing.T) {
	recs, err := ParseRecords([]byte("Age: 40\nSex: M\nOldpeak: 1.5\n"))
	if err != nil {
		t.Fatalf("ParseRecords() failed: %v", err)
	}
	raw, err := ToRaw(recs[0])
	if err != nil {
		t.Fatalf("ToRaw() failed: %v", err)
	}
	if string(raw["Age"]) != "40" || string(raw["Sex"]) != `"M"` || string(raw["Oldpeak"]) != "1.5" {
		t.Errorf("Unexpected raw record %v", raw)
	}
}

func TestLoadRecords_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	if err := os.WriteFile(path, []byte("- Age: 40\n- Age: 41\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	recs, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("Expected 2 records, got %d", len(recs))
	}

	if _, err := LoadRecords(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestConfig_SaveLoadAndResolve(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HEARTCTL_BASE_URL", "")

	got, err := ResolveBaseURL("")
	if err != nil || got != DefaultBaseURL {
		t.Fatalf("Expected default url, got %q, %v", got, err)
	}

	if err := SetBaseURL("https://heart.example.com/"); err != nil {
		t.Fatalf("SetBaseURL() failed: %v", err)
	}
	got, _ = ResolveBaseURL("")
	if got != "https://heart.example.com" {
		t.Errorf("Expected config file url, got %q", got)
	}

	t.Setenv("HEARTCTL_BASE_URL", "http://env:5000")
	got, _ = ResolveBaseURL("")
	if got != "http://env:5000" {
		t.Errorf("Expected env url, got %q", got)
	}

	got, _ = ResolveBaseURL("http://flag:5000")
	if got != "http://flag:5000" {
		t.Errorf("Expected flag url, got %q", got)
	}
}

func TestSetBaseURL_RejectsBadScheme(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := SetBaseURL("localhost:5000"); err == nil {
		t.Error("Expected error for url without scheme")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		if _, err := ParseFormat(f); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", f, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for xml")
	}
}

func sampleResponse() *inference.Response {
	resp := inference.Shape(inference.Result{Label: 1, Probabilities: [2]float64{0.2, 0.8}})
	return &resp
}

func TestPrintPrediction_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintPrediction(&buf, sampleResponse(), FormatJSON); err != nil {
		t.Fatalf("PrintPrediction() failed: %v", err)
	}
	var got inference.Response
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Prediction != 1 || got.PredictionText != inference.TextDetected {
		t.Errorf("Unexpected output %+v", got)
	}
}

func TestPrintPrediction_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintPrediction(&buf, sampleResponse(), FormatTable); err != nil {
		t.Fatalf("PrintPrediction() failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, inference.TextDetected) || !strings.Contains(out, "80.0%") {
		t.Errorf("Unexpected table output:\n%s", out)
	}
}

func TestPrintBatch_KeepsOrderAndErrors(t *testing.T) {
	rows := []BatchRow{
		{Index: 0, Response: sampleResponse()},
		{Index: 1, Error: "Missing required fields: Age"},
	}

	var buf bytes.Buffer
	if err := PrintBatch(&buf, rows, FormatYAML); err != nil {
		t.Fatalf("PrintBatch() failed: %v", err)
	}
	out := buf.String()
	first := strings.Index(out, "index: 0")
	second := strings.Index(out, "index: 1")
	if first < 0 || second < first {
		t.Errorf("Expected rows in order:\n%s", out)
	}
	if !strings.Contains(out, "Missing required fields: Age") {
		t.Errorf("Expected error text in output:\n%s", out)
	}
}

func TestPrintVector_Table(t *testing.T) {
	var buf bytes.Buffer
	err := PrintVector(&buf, []string{"Age", "Sex_M"}, []float64{40, 1}, FormatTable)
	if err != nil {
		t.Fatalf("PrintVector() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Sex_M") {
		t.Errorf("Expected column names in output:\n%s", buf.String())
	}
}
