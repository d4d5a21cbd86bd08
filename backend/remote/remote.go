package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/conversion"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/httpclient"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/version"
)

// Name is the backend name used in logs and metrics.
const Name = "remote"

const (
	transcriptionsPath = "audio/transcriptions"
	speechPath         = "audio/speech"
	modelsPath         = "models"
)

// Backend talks to an OpenAI-compatible speech API. It holds no per-call
// state, so any number of calls may run concurrently.
type Backend struct {
	client *httpclient.Client
	log    *logger.Logger
}

// New creates a remote backend. A nil logger discards output.
func New(cfg Config, log *logger.Logger) (*Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	auth := httpclient.BearerAuth(cfg.APIKey)
	if cfg.AuthHeader != "" {
		auth = httpclient.APIKeyAuth(cfg.APIKey, cfg.AuthHeader)
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   baseURL,
		Timeout:   cfg.Timeout,
		Auth:      auth,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		return nil, errors.Validation("invalid remote connection").WithCause(err)
	}

	return &Backend{client: client, log: log.WithComponent(Name)}, nil
}

// Factory returns a backend.Factory that creates remote backends.
func Factory(cfg Config, log *logger.Logger) backend.Factory {
	return func() (backend.Backend, error) {
		return New(cfg, log)
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return Name }

// Kind returns backend.KindRemote.
func (b *Backend) Kind() backend.Kind { return backend.KindRemote }

// Input returns conversion.ModePassthrough; the API decodes uploads itself.
func (b *Backend) Input() conversion.Mode { return conversion.ModePassthrough }

// IsAvailable lists the models and reports whether the API answered 200.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	resp, err := b.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: modelsPath})
	if err != nil {
		b.log.Debug("health check failed", logger.ErrorFields("health", err))
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the audio as multipart form data.
func (b *Backend) Transcribe(ctx context.Context, req *backend.TranscriptionRequest) (*backend.TranscriptionResult, error) {
	if req.Audio == nil || req.Audio.Raw == nil {
		return nil, errors.Transcription("remote transcription needs the original audio bytes")
	}

	responseFormat := "text"
	if req.Verbose {
		responseFormat = "verbose_json"
	}
	fields := map[string]string{
		"model":           req.Model,
		"response_format": responseFormat,
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	if req.Temperature > 0 {
		fields["temperature"] = strconv.FormatFloat(req.Temperature, 'f', -1, 64)
	}
	if req.LanguageSet() {
		fields["language"] = req.Language
	}

	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   transcriptionsPath,
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "file",
				FileName:    req.Audio.FileName,
				ContentType: req.Audio.MediaType,
				Data:        req.Audio.Raw,
			}},
		},
	})
	if err := b.check(resp, err, backend.OpTranscribe, errors.Transcription); err != nil {
		return nil, err
	}

	if !req.Verbose {
		return &backend.TranscriptionResult{Text: strings.TrimRight(string(resp.Body), "\r\n")}, nil
	}

	var verbose struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(resp.Body, &verbose); err != nil {
		return nil, errors.Transcription("unable to parse verbose transcription").WithCause(err)
	}
	return &backend.TranscriptionResult{
		Text: verbose.Text,
		Attributes: &backend.TranscriptionAttributes{
			Language: verbose.Language,
			Duration: verbose.Duration,
		},
	}, nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// Generate posts the text as JSON and returns the audio body.
func (b *Backend) Generate(ctx context.Context, req *backend.GenerationRequest) (*backend.GenerationResult, error) {
	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   speechPath,
		Body: speechRequest{
			Model:          req.Model,
			Input:          req.Text,
			Voice:          req.Voice,
			ResponseFormat: req.ResponseFormat,
			Speed:          req.Speed,
		},
	})
	if err := b.check(resp, err, backend.OpGenerate, errors.Generation); err != nil {
		return nil, err
	}

	mediaType, known := backend.GenerationMediaType(req.ResponseFormat)
	if !known {
		b.log.Warn("unknown media type for speech response format", logger.Fields("response_format", req.ResponseFormat))
	}
	return &backend.GenerationResult{Audio: resp.Body, MediaType: mediaType}, nil
}

// check maps a transport result to the operation's error kind. Anything but
// 200 is logged with its body before it is returned.
func (b *Backend) check(resp *httpclient.Response, err error, op string, kind func(string) *errors.AppError) error {
	if resp != nil {
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		b.log.Error("remote API returned an error", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldStatusCode, resp.StatusCode,
			logger.FieldBody, string(resp.Body),
		))
		return kind(fmt.Sprintf("unexpected status code %d from remote API", resp.StatusCode)).
			WithDetail(logger.FieldStatusCode, resp.StatusCode).
			WithDetail(logger.FieldBody, string(resp.Body))
	}

	if httpclient.IsTimeout(err) {
		return errors.Timeout(op).WithCause(err)
	}
	return kind("remote API request failed").WithCause(err)
}
