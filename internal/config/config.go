// Package config resolves core.RipOptions from three layers — built-in
// defaults, an optional on-disk YAML file, and CLI flag overrides — the
// same plain-struct-assembled-by-the-caller shape as the teacher's
// internal/scraper.Config, generalized into a layered resolver since
// unlike the teacher this engine persists user preferences between runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/discripper/discripper/internal/core"
)

// FileOptions is the on-disk YAML shape. Every field is optional: a
// missing key leaves the built-in default untouched. Enum fields are
// plain strings so the file stays human-editable.
type FileOptions struct {
	DualLayer         string `yaml:"dual_layer,omitempty"`
	ChunkSize         string `yaml:"chunk_size,omitempty"`
	NewDevicePerChunk string `yaml:"new_device_per_chunk,omitempty"`
	AudioOutput       string `yaml:"audio_output,omitempty"`
	AutoEject         *bool  `yaml:"auto_eject,omitempty"`
	CalcChecksums     *bool  `yaml:"calc_checksums,omitempty"`
}

// Overrides carries the CLI layer's explicitly-set flags. A nil field
// means "flag not passed", leaving whatever the file/defaults resolved to
// in place; internal/cli populates a string-valued field only when its
// flag is non-empty and a bool field only when its flag is true, so a flag
// passed as false leaves the resolved value unchanged.
type Overrides struct {
	DualLayer         *core.DualLayerMode
	ChunkSize         *core.ChunkSizeOption
	NewDevicePerChunk *core.NewDevicePolicy
	AudioOutput       *core.AudioOutputMode
	AutoEject         *bool
	CalcChecksums     *bool
}

// DefaultPath returns ~/.config/discripper/config.yaml (or the
// platform equivalent via os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "discripper", "config.yaml"), nil
}

// Resolve builds the final RipOptions: defaults, then path's file (if it
// exists; a missing file is not an error), then overrides.
func Resolve(path string, overrides Overrides) (core.RipOptions, error) {
	opts := core.DefaultRipOptions()

	file, err := loadFile(path)
	if err != nil {
		return opts, err
	}
	if err := applyFile(&opts, file); err != nil {
		return opts, fmt.Errorf("config: %s: %w", path, err)
	}

	applyOverrides(&opts, overrides)
	return opts, nil
}

func loadFile(path string) (FileOptions, error) {
	var file FileOptions
	if path == "" {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return file, nil
}

func applyFile(opts *core.RipOptions, file FileOptions) error {
	if file.DualLayer != "" {
		v, err := ParseDualLayer(file.DualLayer)
		if err != nil {
			return err
		}
		opts.DualLayer = v
	}
	if file.ChunkSize != "" {
		v, err := ParseChunkSize(file.ChunkSize)
		if err != nil {
			return err
		}
		opts.ChunkSize = v
	}
	if file.NewDevicePerChunk != "" {
		v, err := ParseNewDevicePolicy(file.NewDevicePerChunk)
		if err != nil {
			return err
		}
		opts.NewDevicePerChunk = v
	}
	if file.AudioOutput != "" {
		v, err := ParseAudioOutput(file.AudioOutput)
		if err != nil {
			return err
		}
		opts.AudioOutput = v
	}
	if file.AutoEject != nil {
		opts.AutoEject = *file.AutoEject
	}
	if file.CalcChecksums != nil {
		opts.CalcChecksums = *file.CalcChecksums
	}
	return nil
}

func applyOverrides(opts *core.RipOptions, o Overrides) {
	if o.DualLayer != nil {
		opts.DualLayer = *o.DualLayer
	}
	if o.ChunkSize != nil {
		opts.ChunkSize = *o.ChunkSize
	}
	if o.NewDevicePerChunk != nil {
		opts.NewDevicePerChunk = *o.NewDevicePerChunk
	}
	if o.AudioOutput != nil {
		opts.AudioOutput = *o.AudioOutput
	}
	if o.AutoEject != nil {
		opts.AutoEject = *o.AutoEject
	}
	if o.CalcChecksums != nil {
		opts.CalcChecksums = *o.CalcChecksums
	}
}

func ParseDualLayer(s string) (core.DualLayerMode, error) {
	switch s {
	case "auto":
		return core.DualLayerAuto, nil
	case "mini":
		return core.DualLayerMini, nil
	case "single":
		return core.DualLayerSingle, nil
	case "dual":
		return core.DualLayerDual, nil
	default:
		return 0, fmt.Errorf("dual_layer: unknown value %q (want auto, mini, single, dual)", s)
	}
}

func ParseChunkSize(s string) (core.ChunkSizeOption, error) {
	switch s {
	case "max":
		return core.ChunkSizeMax, nil
	case "1gb":
		return core.ChunkSize1GB, nil
	case "2gb":
		return core.ChunkSize2GB, nil
	case "3gb":
		return core.ChunkSize3GB, nil
	default:
		return 0, fmt.Errorf("chunk_size: unknown value %q (want max, 1gb, 2gb, 3gb)", s)
	}
}

func ParseNewDevicePolicy(s string) (core.NewDevicePolicy, error) {
	switch s {
	case "ask":
		return core.NewDeviceAsk, nil
	case "auto":
		return core.NewDeviceAuto, nil
	default:
		return 0, fmt.Errorf("new_device_per_chunk: unknown value %q (want ask, auto)", s)
	}
}

func ParseAudioOutput(s string) (core.AudioOutputMode, error) {
	switch s {
	case "bin":
		return core.AudioBin, nil
	case "wav":
		return core.AudioWav, nil
	case "wav-fast":
		return core.AudioWavFast, nil
	case "wav-best":
		return core.AudioWavBest, nil
	default:
		return 0, fmt.Errorf("audio_output: unknown value %q (want bin, wav, wav-fast, wav-best)", s)
	}
}
