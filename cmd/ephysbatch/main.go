// Command ephysbatch runs one or more analyses, over one or more recording
// files, through the batch engine, and writes the result table to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "ephyscore/adapters/analyses"
	"ephyscore/adapters/loaders"
	"ephyscore/app"
	"ephyscore/domain/batch"
	"ephyscore/domain/registry"
	"ephyscore/internal/apperr"
	"ephyscore/internal/config"
)

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	var analyses stringList
	var params stringList

	format := flag.String("format", "csv", "output format: csv or json")
	scopeFlag := flag.String("scope", "AverageTrace", "trace scope: Recording, AllTrials, FirstTrial, AverageTrace, SpecificTrial")
	channel := flag.String("channel", "", "channel ID, empty selects the default (first mV channel)")
	trial := flag.Int("trial", -1, "trial index, required when -scope=SpecificTrial")
	concurrency := flag.Int("concurrency", 0, "override EPHYS_BATCH_CONCURRENCY; 0 uses the config default")
	flag.Var(&analyses, "analysis", "analysis name to run (repeatable)")
	flag.Var(&params, "param", "analysis parameter as name=value, applied to every -analysis (repeatable)")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 || len(analyses) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ephysbatch -analysis NAME [-param k=v ...] [-scope SCOPE] [-channel ID] FILE...")
		os.Exit(2)
	}

	sharedParams, err := parseParams(params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, apperr.Wrap(err, "loading configuration"))
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Batch.MaxConcurrency = *concurrency
	}

	var trialIndex *int
	scope := batch.Scope(*scopeFlag)
	if scope == batch.ScopeSpecificTrial {
		if *trial < 0 {
			fmt.Fprintln(os.Stderr, "-trial is required when -scope=SpecificTrial")
			os.Exit(2)
		}
		trialIndex = trial
	}

	items := make([]batch.Item, len(paths))
	for i, p := range paths {
		items[i] = batch.Item{Path: p, Scope: scope, ChannelID: *channel, TrialIndex: trialIndex}
	}

	steps := make([]batch.AnalysisStep, len(analyses))
	for i, name := range analyses {
		if _, ok := registry.Describe(name); !ok {
			fmt.Fprintf(os.Stderr, "unknown analysis %q (available: %s)\n", name, strings.Join(registry.List(), ", "))
			os.Exit(2)
		}
		steps[i] = batch.AnalysisStep{Name: name, Params: sharedParams}
	}

	plan := &batch.Plan{Items: items, Analyses: steps}
	svc := app.NewBatchServiceFromConfig(loaders.Default(), cfg)

	result := svc.Run(context.Background(), plan, nil)
	table := app.NewBatchTable(result)

	var writeErr error
	switch *format {
	case "json":
		writeErr = table.WriteJSON(os.Stdout)
	default:
		writeErr = table.WriteCSV(os.Stdout)
	}
	if writeErr != nil {
		fmt.Fprintln(os.Stderr, writeErr)
		os.Exit(1)
	}

	if result.Status == batch.StatusCancelled {
		fmt.Fprintf(os.Stderr, "batch run cancelled after %d items\n", result.CompletedItems)
		os.Exit(1)
	}
}

func parseParams(kvs []string) (registry.Params, error) {
	params := make(registry.Params, len(kvs))
	for _, kv := range kvs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -param %q, want name=value", kv)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[name] = registry.Float(f)
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			params[name] = registry.Bool(b)
			continue
		}
		params[name] = registry.Str(value)
	}
	return params, nil
}
