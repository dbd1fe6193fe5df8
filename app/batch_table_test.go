package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"ephyscore/domain/batch"
	"ephyscore/domain/registry"
)

func sampleResult() *batch.Result {
	trial := 2
	return &batch.Result{
		Status: batch.StatusCompleted,
		Rows: []batch.Row{
			{
				FileName: "a.csv", FilePath: "/data/a.csv", Channel: "Vm",
				Analysis: "baseline_rmp", Scope: batch.ScopeAverageTrace,
				Values: registry.Result{"rmp_mv": registry.Float(-65.2), "rmp_std": registry.Float(0.1)},
			},
			{
				FileName: "b.csv", FilePath: "/data/b.csv", Channel: "Vm",
				Analysis: "spike_detection", Scope: batch.ScopeSpecificTrial, TrialIndex: &trial,
				Values: registry.Result{"spike_count": registry.Int(3)},
			},
			{
				FileName: "c.csv", FilePath: "/data/c.csv", Channel: "Vm",
				Analysis: "baseline_rmp", Scope: batch.ScopeAverageTrace,
				Err: "window out of range",
			},
		},
	}
}

func TestWriteCSVHeaderUnionsAllResultKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBatchTable(sampleResult()).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	r := csv.NewReader(strings.NewReader(buf.String()))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	header := records[0]
	for _, want := range []string{"file_name", "rmp_mv", "rmp_std", "spike_count", "error"} {
		found := false
		for _, h := range header {
			if h == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("header %v missing column %q", header, want)
		}
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}
}

func TestWriteCSVLeavesMissingKeysEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBatchTable(sampleResult()).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	r := csv.NewReader(strings.NewReader(buf.String()))
	records, _ := r.ReadAll()
	header := records[0]
	spikeCountCol := -1
	for i, h := range header {
		if h == "spike_count" {
			spikeCountCol = i
		}
	}
	if spikeCountCol == -1 {
		t.Fatal("spike_count column not found")
	}
	// row 0 is a.csv's baseline_rmp row, which never set spike_count.
	if records[1][spikeCountCol] != "" {
		t.Fatalf("expected empty spike_count cell for a.csv row, got %q", records[1][spikeCountCol])
	}
}

func TestWriteJSONRendersTrialIndexSentinelAndUnwrapsValues(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBatchTable(sampleResult()).WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var rows []jsonRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].TrialIndex != -1 {
		t.Fatalf("expected -1 sentinel for a row with no trial index, got %d", rows[0].TrialIndex)
	}
	if rows[1].TrialIndex != 2 {
		t.Fatalf("expected trial index 2, got %d", rows[1].TrialIndex)
	}
	if got, ok := rows[0].Values["rmp_mv"].(float64); !ok || got != -65.2 {
		t.Fatalf("expected rmp_mv to unwrap to a float64 -65.2, got %v (%T)", rows[0].Values["rmp_mv"], rows[0].Values["rmp_mv"])
	}
	if rows[2].Err != "window out of range" {
		t.Fatalf("expected error row to carry its message, got %q", rows[2].Err)
	}
}
