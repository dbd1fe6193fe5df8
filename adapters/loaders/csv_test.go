package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ephyscore/ports"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVLoaderParsesChannelsAndRate(t *testing.T) {
	path := writeTempCSV(t, "time_s,Vm_mV,Im_pA\n0.0000,-70.0,0\n0.0001,-69.5,5\n0.0002,-69.0,10\n")

	rec, err := CSVLoader{}.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(rec.Channels))
	}
	vm, ok := rec.Channels["Vm"]
	if !ok {
		t.Fatal("expected a Vm channel")
	}
	if vm.Units != "mV" {
		t.Fatalf("Vm units = %q, want mV", vm.Units)
	}
	if vm.SamplingRate != 10000 {
		t.Fatalf("sampling rate = %v, want 10000", vm.SamplingRate)
	}
	data, ok := vm.GetData(0)
	if !ok || len(data) != 3 {
		t.Fatalf("expected 3 samples on the sole trial, got %v (ok=%v)", data, ok)
	}
}

func TestCSVLoaderMissingFile(t *testing.T) {
	_, err := CSVLoader{}.Load(context.Background(), "/nonexistent/path/does-not-exist.csv")
	var loaderErr *ports.LoaderError
	if !asLoaderError(err, &loaderErr) {
		t.Fatalf("expected a *ports.LoaderError, got %v (%T)", err, err)
	}
	if loaderErr.Kind != ports.LoaderErrFileNotFound {
		t.Fatalf("expected LoaderErrFileNotFound, got %v", loaderErr.Kind)
	}
}

func TestCSVLoaderRejectsMalformedRow(t *testing.T) {
	path := writeTempCSV(t, "time_s,Vm_mV\n0.0,-70\nnot-a-number,-69\n")
	_, err := CSVLoader{}.Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected an error for a non-numeric time column")
	}
}

func TestRegistryDispatchesByExtension(t *testing.T) {
	reg := Default()
	if !reg.CanLoad("trace.csv") {
		t.Fatal("expected the registry to claim .csv")
	}
	if !reg.CanLoad("trace.abf") {
		t.Fatal("expected the registry to claim .abf, even as a stub")
	}
	if reg.CanLoad("trace.xyz") {
		t.Fatal("did not expect the registry to claim an unrelated extension")
	}
}

func TestRegistryStubLoaderReportsUnsupportedFormat(t *testing.T) {
	_, err := Default().Load(context.Background(), "trace.abf")
	var loaderErr *ports.LoaderError
	if !asLoaderError(err, &loaderErr) {
		t.Fatalf("expected a *ports.LoaderError, got %v (%T)", err, err)
	}
	if loaderErr.Kind != ports.LoaderErrUnsupportedFmt {
		t.Fatalf("expected LoaderErrUnsupportedFmt, got %v", loaderErr.Kind)
	}
}

func asLoaderError(err error, target **ports.LoaderError) bool {
	le, ok := err.(*ports.LoaderError)
	if ok {
		*target = le
	}
	return ok
}
