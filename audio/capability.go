package audio

import (
	"fmt"
	"os/exec"
	"sync"
)

// ExtendedMode selects whether the extended decoder tier is used.
type ExtendedMode string

const (
	// ExtendedAuto enables the extended tier when ffmpeg is found.
	ExtendedAuto ExtendedMode = "auto"
	// ExtendedEnabled always enables the extended tier.
	ExtendedEnabled ExtendedMode = "enabled"
	// ExtendedDisabled restricts decoding to WAV and MP3.
	ExtendedDisabled ExtendedMode = "disabled"
)

// DefaultFFmpegPath is the ffmpeg executable looked up on PATH.
const DefaultFFmpegPath = "ffmpeg"

// CapabilityConfig drives the capability probe.
type CapabilityConfig struct {
	Extended   ExtendedMode `yaml:"extended" mapstructure:"extended" validate:"omitempty,oneof=auto enabled disabled"`
	FFmpegPath string       `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
}

// ApplyDefaults fills unset fields.
func (c *CapabilityConfig) ApplyDefaults() {
	if c.Extended == "" {
		c.Extended = ExtendedAuto
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = DefaultFFmpegPath
	}
}

// Validate checks the mode value.
func (c *CapabilityConfig) Validate() error {
	switch c.Extended {
	case ExtendedAuto, ExtendedEnabled, ExtendedDisabled:
		return nil
	}
	return fmt.Errorf("audio.extended must be one of auto, enabled, disabled (got: %s)", c.Extended)
}

// Capabilities is the fixed set of decoding features for this process.
// Compute it once at startup and pass it to NewDecoderSet.
type Capabilities struct {
	// Extended enables FLAC, M4A, AAC, OGG and WEBM.
	Extended bool
	// FFmpegPath is the resolved ffmpeg executable.
	FFmpegPath string
}

// CoreCapabilities decodes WAV and MP3 only.
func CoreCapabilities() Capabilities {
	return Capabilities{}
}

var lookPath = exec.LookPath

// ProbeCapabilities resolves the capabilities for cfg by looking up ffmpeg.
func ProbeCapabilities(cfg CapabilityConfig) Capabilities {
	cfg.ApplyDefaults()
	if cfg.Extended == ExtendedDisabled {
		return Capabilities{}
	}

	resolved, err := lookPath(cfg.FFmpegPath)
	if err != nil {
		if cfg.Extended == ExtendedEnabled {
			return Capabilities{Extended: true, FFmpegPath: cfg.FFmpegPath}
		}
		return Capabilities{}
	}
	return Capabilities{Extended: true, FFmpegPath: resolved}
}

var (
	defaultCaps     Capabilities
	defaultCapsOnce sync.Once
)

// DefaultCapabilities probes with the default configuration once per process.
func DefaultCapabilities() Capabilities {
	defaultCapsOnce.Do(func() {
		defaultCaps = ProbeCapabilities(CapabilityConfig{})
	})
	return defaultCaps
}
