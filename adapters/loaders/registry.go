package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ephyscore/domain/recording"
	"ephyscore/ports"
)

// Registry dispatches a path to the first loader in priority order that
// claims its extension. Built once at start-up with Default(); the batch
// engine depends on ports.Loader, never on Registry directly.
type Registry struct {
	loaders []ports.Loader
}

// Default returns the extension→loader priority table of the loader
// table: every proprietary binary format first, each a documented stub,
// with the CSV/TSV reference loader last. A file whose extension no
// loader claims is rejected as an unsupported format.
func Default() *Registry {
	return &Registry{loaders: []ports.Loader{
		stubLoader{ext: ".abf", format: "Axon Binary Format"},
		stubLoader{ext: ".atf", format: "Axon Text Format"},
		stubLoader{ext: ".smr", format: "Spike2 (CED)"},
		stubLoader{ext: ".smrx", format: "Spike2 64-bit (CED)"},
		stubLoader{ext: ".nex", format: "NeuroExplorer"},
		stubLoader{ext: ".h5", format: "HDF5"},
		stubLoader{ext: ".hdf5", format: "HDF5"},
		stubLoader{ext: ".nwb", format: "Neurodata Without Borders"},
		stubLoader{ext: ".wcp", format: "WinWCP"},
		stubLoader{ext: ".ibw", format: "Igor Binary Wave"},
		stubLoader{ext: ".pxp", format: "Igor Packed Experiment"},
		CSVLoader{},
	}}
}

func (reg *Registry) CanLoad(path string) bool {
	for _, l := range reg.loaders {
		if l.CanLoad(path) {
			return true
		}
	}
	return false
}

func (reg *Registry) Load(ctx context.Context, path string) (*recording.Recording, error) {
	for _, l := range reg.loaders {
		if l.CanLoad(path) {
			return l.Load(ctx, path)
		}
	}
	return nil, &ports.LoaderError{
		Kind: ports.LoaderErrUnsupportedFmt, Path: path,
		Err: fmt.Errorf("no loader registered for extension %q", filepath.Ext(path)),
	}
}

// stubLoader claims its extension but always fails: the binary formats
// it names require proprietary decoders out of this core's scope, but
// the extension→loader mapping itself is still worth asserting so a
// batch run reports "unsupported format", not "file not found", for them.
type stubLoader struct {
	ext    string
	format string
}

func (s stubLoader) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), s.ext)
}

func (s stubLoader) Load(ctx context.Context, path string) (*recording.Recording, error) {
	return nil, &ports.LoaderError{
		Kind: ports.LoaderErrUnsupportedFmt, Path: path,
		Err: fmt.Errorf("%s: no decoder implemented in this core", s.format),
	}
}
