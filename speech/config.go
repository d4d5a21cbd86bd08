package speech

import (
	"fmt"

	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/backend/local"
	"github.com/kbukum/speechkit/backend/remote"
	"github.com/kbukum/speechkit/config"
	"github.com/kbukum/speechkit/validation"
)

// Default option values.
const (
	DefaultTranscriptionModel = "whisper-1"
	DefaultTemperature        = 0.9
	DefaultGenerationModel    = "tts-1"
	DefaultVoice              = "alloy"
	DefaultResponseFormat     = backend.FormatMP3
	DefaultSpeed              = 1.0
)

// Config is the full speechkit configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Connection    ConnectionConfig    `yaml:"connection" mapstructure:"connection"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Audio         AudioConfig         `yaml:"audio" mapstructure:"audio"`
}

// ConnectionConfig selects the backend and holds its settings. Only the
// section matching Kind is applied and validated.
type ConnectionConfig struct {
	Kind   backend.Kind  `yaml:"kind" mapstructure:"kind"`
	Remote remote.Config `yaml:"remote" mapstructure:"remote"`
	Local  local.Config  `yaml:"local" mapstructure:"local"`
}

// TranscriptionConfig holds the defaults for transcription options.
type TranscriptionConfig struct {
	Model       string   `yaml:"model" mapstructure:"model" validate:"required"`
	Language    string   `yaml:"language" mapstructure:"language"`
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature" validate:"omitempty,gte=0,lte=1"`
	Verbose     bool     `yaml:"verbose" mapstructure:"verbose"`
}

// GenerationConfig holds the defaults for generation options.
type GenerationConfig struct {
	Model          string  `yaml:"model" mapstructure:"model" validate:"required"`
	Voice          string  `yaml:"voice" mapstructure:"voice" validate:"required"`
	ResponseFormat string  `yaml:"response_format" mapstructure:"response_format" validate:"oneof=mp3 opus aac flac pcm wav"`
	Speed          float64 `yaml:"speed" mapstructure:"speed" validate:"gte=0.25,lte=4"`
}

// AudioConfig controls decoding.
type AudioConfig struct {
	// TempDir holds intermediate files. Defaults to $TMPDIR/speechkit.
	TempDir                string `yaml:"temp_dir" mapstructure:"temp_dir"`
	audio.CapabilityConfig `yaml:",inline" mapstructure:",squash"`
}

// LoadConfig reads the configuration for serviceName from config.yml,
// .env and the environment, then applies defaults and validates it.
func LoadConfig(serviceName string, opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Connection.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Generation.ApplyDefaults()
	c.Audio.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Connection.Validate(); err != nil {
		return fmt.Errorf("connection: %w", err)
	}
	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription: %w", err)
	}
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return nil
}

// ApplyDefaults defaults Kind to remote and fills the selected section.
func (c *ConnectionConfig) ApplyDefaults() {
	if c.Kind == "" {
		c.Kind = backend.KindRemote
	}
	switch c.Kind {
	case backend.KindRemote:
		c.Remote.ApplyDefaults()
	case backend.KindLocal:
		c.Local.ApplyDefaults()
	}
}

// Validate checks Kind and the selected section.
func (c *ConnectionConfig) Validate() error {
	switch c.Kind {
	case backend.KindRemote:
		return c.Remote.Validate()
	case backend.KindLocal:
		return c.Local.Validate()
	}
	return fmt.Errorf("kind must be one of remote, local (got: %s)", c.Kind)
}

// ApplyDefaults fills unset fields.
func (c *TranscriptionConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultTranscriptionModel
	}
	if c.Language == "" {
		c.Language = backend.LanguageAuto
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
}

// Validate checks the struct rules.
func (c *TranscriptionConfig) Validate() error {
	return validation.Validate(c)
}

// ApplyDefaults fills unset fields.
func (c *GenerationConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultGenerationModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.ResponseFormat == "" {
		c.ResponseFormat = DefaultResponseFormat
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
}

// Validate checks the struct rules.
func (c *GenerationConfig) Validate() error {
	return validation.Validate(c)
}

// ApplyDefaults fills unset fields.
func (c *AudioConfig) ApplyDefaults() {
	c.CapabilityConfig.ApplyDefaults()
}

// Validate checks the decoder settings.
func (c *AudioConfig) Validate() error {
	return c.CapabilityConfig.Validate()
}
