// Package ports declares the core's external collaborator contracts: file
// loaders and exporters. Both are out of the core's scope and
// are specified here purely as interfaces, small and context-aware per
// collaborator.
package ports

import (
	"context"

	"ephyscore/domain/recording"
)

// LoaderErrorKind classifies a loader failure.
type LoaderErrorKind string

const (
	LoaderErrFileNotFound     LoaderErrorKind = "file_not_found"
	LoaderErrUnsupportedFmt   LoaderErrorKind = "unsupported_format"
	LoaderErrFileReadError    LoaderErrorKind = "file_read_error"
)

// LoaderError is the classification-level error a Loader raises on failure.
type LoaderError struct {
	Kind LoaderErrorKind
	Path string
	Err  error
}

func (e *LoaderError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Path
}

func (e *LoaderError) Unwrap() error { return e.Err }

// Loader reads one file-format family into the core's Recording model.
// File-format readers (ABF/Neo-like, HDF5, WCP, ...) are out of the
// core's scope; only the CSV/TSV reference loader in adapters/loaders is
// implemented here.
type Loader interface {
	// CanLoad reports whether this loader claims the given path's
	// extension, used to build the extension → loader priority table.
	CanLoad(path string) bool
	// Load reads path into a Recording, or returns a *LoaderError.
	Load(ctx context.Context, path string) (*recording.Recording, error)
}

// Exporter serializes an analyzed Recording to an external format. NWB
// export is specified only as this contract; the encoding itself is
// standard and out of scope.
type Exporter interface {
	Export(ctx context.Context, rec *recording.Recording, destination string) error
}
