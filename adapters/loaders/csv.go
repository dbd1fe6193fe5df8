// Package loaders implements ports.Loader: the generic CSV/TSV reference
// loader, and an extension-keyed dispatch table for the proprietary binary
// formats named in the loader table, left as documented stubs.
package loaders

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ephyscore/domain/recording"
	"ephyscore/ports"
)

// CSVLoader reads a delimited-text recording: a header row of
// "<channel>_<units>" column names after a leading time column, one data
// row per sample. Every channel becomes a single-trial Channel; the
// sampling rate is derived from the first two time-column values.
type CSVLoader struct{}

func (CSVLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	default:
		return false
	}
}

func (CSVLoader) Load(ctx context.Context, path string) (*recording.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ports.LoaderError{Kind: ports.LoaderErrFileNotFound, Path: path, Err: err}
		}
		return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	if strings.ToLower(filepath.Ext(path)) == ".tsv" {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err != nil {
		return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path, Err: err}
	}
	if len(header) < 2 {
		return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path,
			Err: fmt.Errorf("expected a time column plus at least one channel column, got %d columns", len(header))}
	}
	channelNames := header[1:]
	columns := make([][]float64, len(channelNames))
	var times []float64

	for {
		select {
		case <-ctx.Done():
			return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path, Err: ctx.Err()}
		default:
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path, Err: err}
		}
		if len(record) != len(header) {
			return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path,
				Err: fmt.Errorf("row has %d fields, header has %d", len(record), len(header))}
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path,
				Err: fmt.Errorf("invalid time value %q: %w", record[0], err)}
		}
		times = append(times, t)
		for i, raw := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path,
					Err: fmt.Errorf("invalid sample %q in column %q: %w", raw, channelNames[i], err)}
			}
			columns[i] = append(columns[i], v)
		}
	}
	if len(times) < 2 {
		return nil, &ports.LoaderError{Kind: ports.LoaderErrFileReadError, Path: path,
			Err: fmt.Errorf("fewer than two samples")}
	}

	samplingRate := 1 / (times[1] - times[0])
	channels := make(map[string]*recording.Channel, len(channelNames))
	for i, name := range channelNames {
		id, units := splitChannelHeader(name)
		channels[id] = &recording.Channel{
			ID: id, Name: id, Units: units, SamplingRate: samplingRate,
			DataTrials: [][]float64{columns[i]},
		}
	}

	return &recording.Recording{
		SourceFile:   path,
		Channels:     channels,
		SamplingRate: samplingRate,
	}, nil
}

// splitChannelHeader splits "Vm_mV" into ("Vm", "mV"); a column with no
// underscore gets "unknown" units rather than failing the whole load.
func splitChannelHeader(h string) (id, units string) {
	idx := strings.LastIndex(h, "_")
	if idx < 0 {
		return h, "unknown"
	}
	return h[:idx], h[idx+1:]
}
