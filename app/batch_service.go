package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"ephyscore/adapters/dsp"
	"ephyscore/domain/batch"
	"ephyscore/domain/pipeline"
	"ephyscore/domain/recording"
	"ephyscore/domain/registry"
	"ephyscore/internal"
	"ephyscore/internal/config"
	"ephyscore/ports"
)

// BatchService runs a batch.Plan against a loader, producing one row per
// (item, trace, analysis) triple. It is the only component that dispatches
// to the registry across many files, so it is also the only component
// that needs to know the registry's secondary-channel and all-trials
// conventions.
type BatchService struct {
	Loader ports.Loader
	// Concurrency bounds how many items are resolved and analyzed in
	// parallel. 0 or 1 runs items strictly in sequence; output row order
	// always matches input item order regardless.
	Concurrency int
	Logger      *internal.Logger
}

func NewBatchService(loader ports.Loader) *BatchService {
	return &BatchService{Loader: loader, Concurrency: 1, Logger: internal.DefaultLogger}
}

// NewBatchServiceFromConfig builds a BatchService whose concurrency comes
// from the process-wide config instead of a caller-supplied literal.
func NewBatchServiceFromConfig(loader ports.Loader, cfg *config.Config) *BatchService {
	return &BatchService{Loader: loader, Concurrency: cfg.Batch.MaxConcurrency, Logger: internal.DefaultLogger}
}

// Run processes every item in plan, applying the preprocessing pipeline
// and every analysis step to each resolved trace. One item failing to
// load, resolve, or preprocess never aborts the run: it contributes an
// error row and processing continues with the next item. Cancelling ctx
// stops items that have not yet started and marks the result cancelled;
// rows already produced are kept.
func (s *BatchService) Run(ctx context.Context, plan *batch.Plan, progress batch.ProgressFunc) *batch.Result {
	total := len(plan.Items)
	rowsByItem := make([][]batch.Row, total)
	var completed int64

	concurrency := s.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range plan.Items {
		i, item := i, item
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if progress != nil {
				progress(batch.ProgressUpdate{ItemIndex: i, Total: total, StageLabel: fmt.Sprintf("loading %s", filepath.Base(item.Path))})
			}
			rowsByItem[i] = s.runItem(gctx, item, plan)
			atomic.AddInt64(&completed, 1)
			return nil
		})
	}

	status := batch.StatusCompleted
	if err := g.Wait(); err != nil {
		status = batch.StatusCancelled
		s.logger().Warn("batch run cancelled after %d/%d items: %v", atomic.LoadInt64(&completed), total, err)
	}

	rows := make([]batch.Row, 0, total*len(plan.Analyses))
	for _, itemRows := range rowsByItem {
		rows = append(rows, itemRows...)
	}
	return &batch.Result{Rows: rows, Status: status, CompletedItems: int(completed)}
}

// trace is one extracted (and possibly preprocessed) 1-D sample array
// plus the time vector and trial index it came from.
type trace struct {
	data       []float64
	time       []float64
	trialIndex *int
	err        error
}

func (s *BatchService) runItem(ctx context.Context, item batch.Item, plan *batch.Plan) []batch.Row {
	rec, err := s.Loader.Load(ctx, item.Path)
	if err != nil {
		return []batch.Row{s.errorRow(item, "", err)}
	}

	ch, channelID, err := resolveChannel(rec, item.ChannelID)
	if err != nil {
		return []batch.Row{s.errorRow(item, "", err)}
	}

	traces, err := resolveTraces(ch, item.Scope, item.TrialIndex)
	if err != nil {
		return []batch.Row{s.errorRow(item, channelID, err)}
	}

	for i, tr := range traces {
		if plan.Pipeline == nil || len(plan.Pipeline.Steps) == 0 {
			continue
		}
		out, perr := applyPipeline(plan.Pipeline, tr, ch.SamplingRate)
		if perr != nil {
			traces[i] = trace{trialIndex: tr.trialIndex, err: perr}
			continue
		}
		traces[i] = trace{data: out, time: tr.time, trialIndex: tr.trialIndex}
	}

	allTraces := make([][]float64, 0, len(traces))
	for _, tr := range traces {
		if tr.err == nil {
			allTraces = append(allTraces, tr.data)
		}
	}

	rows := make([]batch.Row, 0, len(traces)*len(plan.Analyses))
	for _, step := range plan.Analyses {
		select {
		case <-ctx.Done():
			return rows
		default:
		}

		desc, ok := registry.Describe(step.Name)
		if !ok {
			rows = append(rows, s.errorRow(item, channelID, fmt.Errorf("unknown analysis: %s", step.Name)))
			continue
		}

		if desc.RequiresAllTrials {
			params, err := injectSecondaryChannel(desc, step.Params, rec, nil)
			if err != nil {
				rows = append(rows, s.analysisErrorRow(item, channelID, step.Name, nil, err))
				continue
			}
			rows = append(rows, s.runAllTrials(step.Name, traces, allTraces, ch.SamplingRate, params, item, channelID))
			continue
		}

		for _, tr := range traces {
			if tr.err != nil {
				rows = append(rows, s.analysisErrorRow(item, channelID, step.Name, tr.trialIndex, tr.err))
				continue
			}
			params, err := injectSecondaryChannel(desc, step.Params, rec, tr.trialIndex)
			if err != nil {
				rows = append(rows, s.analysisErrorRow(item, channelID, step.Name, tr.trialIndex, err))
				continue
			}
			result, err := registry.Run(step.Name, tr.data, tr.time, ch.SamplingRate, params)
			if err != nil {
				rows = append(rows, s.analysisErrorRow(item, channelID, step.Name, tr.trialIndex, err))
				continue
			}
			rows = append(rows, batch.Row{
				FileName: filepath.Base(item.Path), FilePath: item.Path, Channel: channelID,
				Analysis: step.Name, Scope: item.Scope, TrialIndex: tr.trialIndex, Values: result,
			})
		}
	}
	return rows
}

// runAllTrials dispatches a multi-trial analysis once for the whole item,
// using the first usable trace's (data, time) pair as the representative
// single-trace argument the registry.Fn signature still requires.
func (s *BatchService) runAllTrials(name string, traces []trace, allTraces [][]float64, rate float64, params registry.Params, item batch.Item, channelID string) batch.Row {
	var rep trace
	for _, tr := range traces {
		if tr.err == nil {
			rep = tr
			break
		}
	}
	if rep.data == nil {
		return s.analysisErrorRow(item, channelID, name, nil, fmt.Errorf("no usable trials"))
	}
	result, err := registry.RunTrials(name, rep.data, rep.time, rate, allTraces, params)
	if err != nil {
		return s.analysisErrorRow(item, channelID, name, nil, err)
	}
	return batch.Row{
		FileName: filepath.Base(item.Path), FilePath: item.Path, Channel: channelID,
		Analysis: name, Scope: item.Scope, Values: result,
	}
}

// injectSecondaryChannel copies stepParams and, for analyses that declare
// a secondary-channel requirement, resolves the channel named by that
// parameter on the same recording and injects its samples under
// "<paramName>_data". trialIndex selects the matching trial on the
// secondary channel; nil means use its averaged trace, matching how the
// primary trace was resolved for AverageTrace/Recording scope.
func injectSecondaryChannel(desc registry.Descriptor, stepParams registry.Params, rec *recording.Recording, trialIndex *int) (registry.Params, error) {
	params := make(registry.Params, len(stepParams)+1)
	for k, v := range stepParams {
		params[k] = v
	}
	if desc.RequiresSecondaryChannel == nil {
		return params, nil
	}
	paramName := desc.RequiresSecondaryChannel.ParamName
	nameVal, ok := stepParams[paramName]
	if !ok || nameVal.Str() == "" {
		return nil, fmt.Errorf("missing required secondary channel parameter %q", paramName)
	}
	secCh, ok := rec.Channels[nameVal.Str()]
	if !ok {
		return nil, fmt.Errorf("secondary channel %q not found", nameVal.Str())
	}
	var data []float64
	if trialIndex != nil {
		data, ok = secCh.GetData(*trialIndex)
	} else {
		data, ok = secCh.GetAveragedData()
	}
	if !ok {
		return nil, fmt.Errorf("secondary channel %q trace unavailable", nameVal.Str())
	}
	params[paramName+"_data"] = registry.FloatArray(data)
	return params, nil
}

func (s *BatchService) logger() *internal.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return internal.DefaultLogger
}

func (s *BatchService) errorRow(item batch.Item, channel string, err error) batch.Row {
	s.logger().Error("%s: %v", item.Path, err)
	return batch.Row{
		FileName: filepath.Base(item.Path), FilePath: item.Path, Channel: channel,
		Scope: item.Scope, TrialIndex: item.TrialIndex, Err: err.Error(),
	}
}

func (s *BatchService) analysisErrorRow(item batch.Item, channel, analysis string, trialIndex *int, err error) batch.Row {
	s.logger().Warn("%s: analysis %q: %v", item.Path, analysis, err)
	return batch.Row{
		FileName: filepath.Base(item.Path), FilePath: item.Path, Channel: channel,
		Analysis: analysis, Scope: item.Scope, TrialIndex: trialIndex, Err: err.Error(),
	}
}

// resolveChannel selects channelID if given, otherwise applies the default
// channel strategy: the first channel (by sorted ID) whose Units is "mV".
func resolveChannel(rec *recording.Recording, channelID string) (*recording.Channel, string, error) {
	if channelID != "" {
		ch, ok := rec.Channels[channelID]
		if !ok {
			return nil, "", fmt.Errorf("channel %q not found", channelID)
		}
		return ch, channelID, nil
	}
	ids := make([]string, 0, len(rec.Channels))
	for id := range rec.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if rec.Channels[id].Units == "mV" {
			return rec.Channels[id], id, nil
		}
	}
	if len(ids) > 0 {
		return rec.Channels[ids[0]], ids[0], nil
	}
	return nil, "", fmt.Errorf("recording has no channels")
}

// resolveTraces extracts one or more 1-D traces from ch per scope.
func resolveTraces(ch *recording.Channel, scope batch.Scope, trialIndex *int) ([]trace, error) {
	switch scope {
	case batch.ScopeRecording, batch.ScopeAverageTrace:
		data, ok := ch.GetAveragedData()
		if !ok {
			return nil, fmt.Errorf("averaged trace unavailable: trials have unequal length")
		}
		t, ok := ch.GetAveragedTimeVector()
		if !ok {
			return nil, fmt.Errorf("averaged time vector unavailable")
		}
		return []trace{{data: data, time: t}}, nil

	case batch.ScopeFirstTrial:
		return traceAt(ch, 0)

	case batch.ScopeSpecificTrial:
		if trialIndex == nil {
			return nil, fmt.Errorf("SpecificTrial scope requires a trial index")
		}
		return traceAt(ch, *trialIndex)

	case batch.ScopeAllTrials:
		if ch.NumTrials() == 0 {
			return nil, fmt.Errorf("channel has no trials")
		}
		traces := make([]trace, 0, ch.NumTrials())
		for i := 0; i < ch.NumTrials(); i++ {
			data, ok := ch.GetData(i)
			if !ok {
				continue
			}
			t, ok := ch.GetRelativeTimeVector(i)
			if !ok {
				continue
			}
			idx := i
			traces = append(traces, trace{data: data, time: t, trialIndex: &idx})
		}
		if len(traces) == 0 {
			return nil, fmt.Errorf("no usable trials")
		}
		return traces, nil

	default:
		return nil, fmt.Errorf("unknown scope: %s", scope)
	}
}

func traceAt(ch *recording.Channel, i int) ([]trace, error) {
	data, ok := ch.GetData(i)
	if !ok {
		return nil, fmt.Errorf("trial %d unavailable", i)
	}
	t, ok := ch.GetRelativeTimeVector(i)
	if !ok {
		return nil, fmt.Errorf("trial %d time vector unavailable", i)
	}
	idx := i
	return []trace{{data: data, time: t, trialIndex: &idx}}, nil
}

func applyPipeline(p *pipeline.Plan, tr trace, rate float64) ([]float64, error) {
	return dsp.Process(p, tr.data, tr.time, rate)
}
