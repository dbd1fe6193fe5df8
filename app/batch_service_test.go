package app

import (
	"context"
	"testing"

	_ "ephyscore/adapters/analyses"
	"ephyscore/domain/batch"
	"ephyscore/domain/recording"
	"ephyscore/domain/registry"
)

// fakeLoader serves a fixed in-memory recording set, keyed by path, instead
// of reading from disk, so the batch engine can be tested without the
// CSV/TSV reference loader.
type fakeLoader struct {
	recordings map[string]*recording.Recording
}

func (f fakeLoader) CanLoad(path string) bool { _, ok := f.recordings[path]; return ok }

func (f fakeLoader) Load(ctx context.Context, path string) (*recording.Recording, error) {
	rec, ok := f.recordings[path]
	if !ok {
		return nil, &errNotFound{path}
	}
	return rec, nil
}

type errNotFound struct{ path string }

func (e *errNotFound) Error() string { return "not found: " + e.path }

func oneChannelRecording(units string, trials [][]float64, rate float64) *recording.Recording {
	return &recording.Recording{
		Channels: map[string]*recording.Channel{
			"ch0": {ID: "ch0", Name: "Vm", Units: units, SamplingRate: rate, DataTrials: trials},
		},
	}
}

func TestBatchServiceRunsAnalysisAcrossFiles(t *testing.T) {
	loader := fakeLoader{recordings: map[string]*recording.Recording{
		"a.rec": oneChannelRecording("mV", [][]float64{{-65, -65, -65, -65}}, 1000),
		"b.rec": oneChannelRecording("mV", [][]float64{{-70, -70, -70, -70}}, 1000),
	}}
	svc := NewBatchService(loader)

	plan := &batch.Plan{
		Items: []batch.Item{
			{Path: "a.rec", Scope: batch.ScopeAverageTrace},
			{Path: "b.rec", Scope: batch.ScopeAverageTrace},
		},
		Analyses: []batch.AnalysisStep{
			{Name: "baseline_rmp", Params: registry.Params{"baseline_start": registry.Float(0), "baseline_end": registry.Float(0.003)}},
		},
	}

	result := svc.Run(context.Background(), plan, nil)
	if result.Status != batch.StatusCompleted {
		t.Fatalf("expected completed status, got %v", result.Status)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}

	byFile := map[string]registry.Result{}
	for _, row := range result.Rows {
		if row.Err != "" {
			t.Fatalf("row for %s had an error: %s", row.FileName, row.Err)
		}
		byFile[row.FileName] = row.Values
	}
	if got := byFile["a.rec"]["rmp_mv"].Float(); got != -65 {
		t.Fatalf("a.rec rmp_mv = %v, want -65", got)
	}
	if got := byFile["b.rec"]["rmp_mv"].Float(); got != -70 {
		t.Fatalf("b.rec rmp_mv = %v, want -70", got)
	}
}

func TestBatchServiceOneFailingItemDoesNotAbortTheRun(t *testing.T) {
	loader := fakeLoader{recordings: map[string]*recording.Recording{
		"good.rec": oneChannelRecording("mV", [][]float64{{-65, -65, -65}}, 1000),
	}}
	svc := NewBatchService(loader)

	plan := &batch.Plan{
		Items: []batch.Item{
			{Path: "missing.rec", Scope: batch.ScopeAverageTrace},
			{Path: "good.rec", Scope: batch.ScopeAverageTrace},
		},
		Analyses: []batch.AnalysisStep{
			{Name: "baseline_rmp", Params: registry.Params{"baseline_start": registry.Float(0), "baseline_end": registry.Float(0.002)}},
		},
	}

	result := svc.Run(context.Background(), plan, nil)
	var sawError, sawSuccess bool
	for _, row := range result.Rows {
		if row.FileName == "missing.rec" && row.Err != "" {
			sawError = true
		}
		if row.FileName == "good.rec" && row.Err == "" {
			sawSuccess = true
		}
	}
	if !sawError {
		t.Fatal("expected an error row for the missing file")
	}
	if !sawSuccess {
		t.Fatal("expected the second item to still produce a successful row")
	}
}

func TestBatchServiceUnknownAnalysisProducesErrorRow(t *testing.T) {
	loader := fakeLoader{recordings: map[string]*recording.Recording{
		"a.rec": oneChannelRecording("mV", [][]float64{{-65, -65, -65}}, 1000),
	}}
	svc := NewBatchService(loader)
	plan := &batch.Plan{
		Items:    []batch.Item{{Path: "a.rec", Scope: batch.ScopeAverageTrace}},
		Analyses: []batch.AnalysisStep{{Name: "does_not_exist"}},
	}
	result := svc.Run(context.Background(), plan, nil)
	if len(result.Rows) != 1 || result.Rows[0].Err == "" {
		t.Fatalf("expected a single error row, got %+v", result.Rows)
	}
}

func TestBatchServicePreservesInputOrderUnderConcurrency(t *testing.T) {
	recs := map[string]*recording.Recording{}
	items := make([]batch.Item, 20)
	for i := 0; i < 20; i++ {
		path := string(rune('a' + i))
		recs[path] = oneChannelRecording("mV", [][]float64{{float64(-i), float64(-i)}}, 1000)
		items[i] = batch.Item{Path: path, Scope: batch.ScopeAverageTrace}
	}
	svc := NewBatchService(fakeLoader{recordings: recs})
	svc.Concurrency = 8

	plan := &batch.Plan{
		Items: items,
		Analyses: []batch.AnalysisStep{
			{Name: "baseline_rmp", Params: registry.Params{"baseline_start": registry.Float(0), "baseline_end": registry.Float(0.0005)}},
		},
	}
	result := svc.Run(context.Background(), plan, nil)
	if len(result.Rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(result.Rows))
	}
	for i, row := range result.Rows {
		wantPath := string(rune('a' + i))
		if row.FilePath != wantPath {
			t.Fatalf("row %d came from %q, want %q: output order must match input order regardless of concurrency", i, row.FilePath, wantPath)
		}
	}
}
