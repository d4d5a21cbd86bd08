package speech

import (
	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/util"
	"github.com/kbukum/speechkit/validation"
)

// TranscriptionOptions override the configured transcription defaults for
// one call. Zero values keep the default.
type TranscriptionOptions struct {
	Model       string   `json:"model,omitempty"`
	Language    string   `json:"language,omitempty" validate:"omitempty,max=16"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=1"`
	Verbose     *bool    `json:"verbose,omitempty"`
}

// GenerationOptions override the configured generation defaults for one
// call. Zero values keep the default.
type GenerationOptions struct {
	Model          string  `json:"model,omitempty"`
	Voice          string  `json:"voice,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty" validate:"omitempty,oneof=mp3 opus aac flac pcm wav"`
	Speed          float64 `json:"speed,omitempty" validate:"omitempty,gte=0.25,lte=4"`
}

// request validates opts and merges them over the defaults.
func (c *TranscriptionConfig) request(prompt string, opts TranscriptionOptions) (*backend.TranscriptionRequest, error) {
	if err := validation.Validate(opts); err != nil {
		return nil, err
	}
	return &backend.TranscriptionRequest{
		Prompt:      prompt,
		Model:       util.Coalesce(opts.Model, c.Model),
		Language:    util.Coalesce(opts.Language, c.Language),
		Temperature: util.Deref(util.Coalesce(opts.Temperature, c.Temperature)),
		Verbose:     util.Deref(util.Coalesce(opts.Verbose, &c.Verbose)),
	}, nil
}

// request validates opts and merges them over the defaults.
func (c *GenerationConfig) request(text string, opts GenerationOptions) (*backend.GenerationRequest, error) {
	if err := validation.Validate(opts); err != nil {
		return nil, err
	}
	return &backend.GenerationRequest{
		Text:           text,
		Model:          util.Coalesce(opts.Model, c.Model),
		Voice:          util.Coalesce(opts.Voice, c.Voice),
		ResponseFormat: util.Coalesce(opts.ResponseFormat, c.ResponseFormat),
		Speed:          util.Coalesce(opts.Speed, c.Speed),
	}, nil
}
