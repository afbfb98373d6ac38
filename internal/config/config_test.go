package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/discripper/discripper/internal/core"
)

func TestResolveMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := core.DefaultRipOptions()
	if opts != want {
		t.Fatalf("Resolve() = %+v, want defaults %+v", opts, want)
	}
}

func TestResolveFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "chunk_size: 2gb\naudio_output: wav-best\nauto_eject: false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	opts, err := Resolve(path, Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if opts.ChunkSize != core.ChunkSize2GB {
		t.Errorf("ChunkSize = %v, want ChunkSize2GB", opts.ChunkSize)
	}
	if opts.AudioOutput != core.AudioWavBest {
		t.Errorf("AudioOutput = %v, want AudioWavBest", opts.AudioOutput)
	}
	if opts.AutoEject {
		t.Error("AutoEject = true, want false from file")
	}
	if opts.DualLayer != core.DualLayerAuto {
		t.Errorf("DualLayer = %v, want untouched default DualLayerAuto", opts.DualLayer)
	}
}

func TestResolveOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: 2gb\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cs := core.ChunkSize1GB
	opts, err := Resolve(path, Overrides{ChunkSize: &cs})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if opts.ChunkSize != core.ChunkSize1GB {
		t.Errorf("ChunkSize = %v, want ChunkSize1GB from override", opts.ChunkSize)
	}
}

func TestResolveInvalidEnumValueErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("audio_output: cassette\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Resolve(path, Overrides{}); err == nil {
		t.Fatal("Resolve() error = nil, want an error for an unknown audio_output value")
	}
}

func TestDefaultPathEndsInDiscripperConfigYAML(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	want := filepath.Join("discripper", "config.yaml")
	if filepath.Base(filepath.Dir(path)) != "discripper" || filepath.Base(path) != "config.yaml" {
		t.Fatalf("DefaultPath() = %q, want it to end in %q", path, want)
	}
}
