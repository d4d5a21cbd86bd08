package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/speechkit/async"
	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/backend"
	"github.com/kbukum/speechkit/backend/local"
	"github.com/kbukum/speechkit/component"
	"github.com/kbukum/speechkit/errors"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/testutil"
	"github.com/kbukum/speechkit/util"
)

func TestMain(m *testing.M) {
	logger.SetGlobalLogger(logger.Nop())
	os.Exit(m.Run())
}

type fakeEngine struct {
	mu      sync.Mutex
	samples []float32
	params  local.Params
	panics  bool
}

func (e *fakeEngine) Init(context.Context, string) (local.Context, error) { return e, nil }

func (e *fakeEngine) Full(_ context.Context, p local.Params, samples []float32) (int, error) {
	if e.panics {
		panic("engine crashed")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.samples, e.params = samples, p
	return 0, nil
}

func (e *fakeEngine) NumSegments() int { return 2 }

func (e *fakeEngine) SegmentText(i int) string { return []string{"local", "text"}[i] }

func (e *fakeEngine) Close() error { return nil }

func await[T any](t *testing.T, f *async.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return f.Await(ctx)
}

func localConfig(t *testing.T) Config {
	t.Helper()
	model := testutil.WriteFile(t, t.TempDir(), "ggml-tiny.bin", []byte("model"))
	var cfg Config
	cfg.Connection.Kind = backend.KindLocal
	cfg.Connection.Local.Model.Source = model
	cfg.Audio.TempDir = t.TempDir()
	return cfg
}

func newLocalService(t *testing.T, engine *fakeEngine, caps audio.Capabilities) *Service {
	t.Helper()
	svc, err := New(localConfig(t), WithEngine(engine), WithCapabilities(caps), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	testutil.Start(t, svc)
	return svc
}

func remoteService(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var cfg Config
	cfg.Connection.Remote.BaseURL = srv.URL + "/v1"
	cfg.Connection.Remote.APIKey = "sk-test"
	cfg.Audio.TempDir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := New(cfg, WithCapabilities(audio.CoreCapabilities()), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	testutil.Start(t, svc)
	return svc
}

func TestNew_InvalidConfig(t *testing.T) {
	var cfg Config
	cfg.Connection.Kind = backend.KindLocal
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for local connection without model")
	}
}

func TestTranscribe_Local(t *testing.T) {
	engine := &fakeEngine{}
	svc := newLocalService(t, engine, audio.CoreCapabilities())

	wav := testutil.SilenceWAV(t, 16000, 1, time.Second)
	res, err := await(t, svc.Transcribe(context.Background(), bytes.NewReader(wav), "audio/wav", "prompt", TranscriptionOptions{Language: "en"}))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if res.Text != "local text" {
		t.Errorf("Text = %q", res.Text)
	}
	if len(engine.samples) != 16000 {
		t.Errorf("engine got %d samples, want 16000", len(engine.samples))
	}
	for i, s := range engine.samples {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
	want := local.Params{Threads: 4, Language: "en", InitialPrompt: "prompt", Temperature: 0.9}
	if engine.params != want {
		t.Errorf("params = %+v, want %+v", engine.params, want)
	}
	testutil.AssertEmptyDir(t, svc.orchestrator.TempDir())
}

func TestTranscribe_FLACWithoutExtendedTier(t *testing.T) {
	svc := newLocalService(t, &fakeEngine{}, audio.CoreCapabilities())

	_, err := await(t, svc.Transcribe(context.Background(), strings.NewReader("fLaC"), "audio/flac", "", TranscriptionOptions{}))
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeAudioFormatNotSupported {
		t.Fatalf("error = %v, want AUDIO_FORMAT_NOT_SUPPORTED", err)
	}
	if !strings.Contains(appErr.Message, "FLAC") || !strings.Contains(appErr.Message, "WAV") {
		t.Errorf("message = %q, want FLAC and available formats", appErr.Message)
	}
}

func TestTranscribe_PanicBecomesTranscriptionError(t *testing.T) {
	svc := newLocalService(t, &fakeEngine{panics: true}, audio.CoreCapabilities())

	wav := testutil.SilenceWAV(t, 16000, 1, 100*time.Millisecond)
	_, err := await(t, svc.Transcribe(context.Background(), bytes.NewReader(wav), "wav", "", TranscriptionOptions{}))
	if !errors.IsCode(err, errors.ErrCodeTranscription) {
		t.Errorf("error = %v, want TRANSCRIPTION", err)
	}
}

func TestTranscribe_InvalidOptions(t *testing.T) {
	svc := newLocalService(t, &fakeEngine{}, audio.CoreCapabilities())

	wav := testutil.SilenceWAV(t, 16000, 1, 100*time.Millisecond)
	opts := TranscriptionOptions{Temperature: util.Ptr(2.0)}
	_, err := await(t, svc.Transcribe(context.Background(), bytes.NewReader(wav), "wav", "", opts))
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

type trackingReader struct {
	r    io.Reader
	read atomic.Bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	r.read.Store(true)
	return r.r.Read(p)
}

func TestTranscribe_InvalidOptionsSkipConversion(t *testing.T) {
	svc := newLocalService(t, &fakeEngine{}, audio.CoreCapabilities())

	content := &trackingReader{r: bytes.NewReader(testutil.SilenceWAV(t, 16000, 1, 100*time.Millisecond))}
	opts := TranscriptionOptions{Temperature: util.Ptr(1.5)}
	_, err := await(t, svc.Transcribe(context.Background(), content, "wav", "", opts))
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
	if content.read.Load() {
		t.Error("audio was read before options were validated")
	}
}

func TestGenerateSpeech_LocalIncompatible(t *testing.T) {
	svc := newLocalService(t, &fakeEngine{}, audio.CoreCapabilities())

	f := svc.GenerateSpeech(context.Background(), "hello", GenerationOptions{})
	_, err := await(t, f)
	if !errors.IsCode(err, errors.ErrCodeConnectionIncompatible) {
		t.Errorf("error = %v, want CONNECTION_INCOMPATIBLE", err)
	}
}

func TestTranscribe_Remote(t *testing.T) {
	var gotFile, gotName, gotModel, gotFormat string
	svc := remoteService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		gotFile, gotName = string(data), hdr.Filename
		gotModel, gotFormat = r.FormValue("model"), r.FormValue("response_format")
		_, _ = io.WriteString(w, "remote text\n")
	}, nil)

	// FLAC passes through untouched to the remote API.
	res, err := await(t, svc.Transcribe(context.Background(), strings.NewReader("fLaC-bytes"), "audio/flac", "", TranscriptionOptions{Model: "whisper-large"}))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if res.Text != "remote text" {
		t.Errorf("Text = %q", res.Text)
	}
	if gotFile != "fLaC-bytes" || gotName != "speech.flac" {
		t.Errorf("file = %q (%s)", gotFile, gotName)
	}
	if gotModel != "whisper-large" || gotFormat != "text" {
		t.Errorf("model = %q, response_format = %q", gotModel, gotFormat)
	}
}

func TestGenerateSpeech_Remote(t *testing.T) {
	var body map[string]any
	svc := remoteService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte("OggS"))
	}, func(c *Config) { c.Generation.Voice = "nova" })

	res, err := await(t, svc.GenerateSpeech(context.Background(), "Hello!", GenerationOptions{ResponseFormat: "opus", Speed: 1.5}))
	if err != nil {
		t.Fatalf("GenerateSpeech() error = %v", err)
	}
	if string(res.Audio) != "OggS" || res.MediaType != "audio/opus" {
		t.Errorf("result = %q %s", res.Audio, res.MediaType)
	}
	want := map[string]any{"model": "tts-1", "input": "Hello!", "voice": "nova", "response_format": "opus", "speed": 1.5}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, body[k], v)
		}
	}
}

func TestGenerateSpeech_EmptyText(t *testing.T) {
	svc := remoteService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}, nil)
	f := svc.GenerateSpeech(context.Background(), "  ", GenerationOptions{})
	if _, ok, err := f.Result(); !ok || !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Result() = %v, %v; want completed INVALID_INPUT", ok, err)
	}
}

func TestRemoteNon200(t *testing.T) {
	svc := remoteService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}, nil)

	_, err := await(t, svc.GenerateSpeech(context.Background(), "hi", GenerationOptions{}))
	if !errors.IsCode(err, errors.ErrCodeGeneration) {
		t.Errorf("error = %v, want GENERATION", err)
	}
}

func TestService_Component(t *testing.T) {
	var cfg Config
	cfg.Connection.Remote.BaseURL = "http://127.0.0.1:1/v1/"
	svc, err := New(cfg, WithCapabilities(audio.CoreCapabilities()), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var _ component.Component = svc
	if svc.Name() != ComponentName {
		t.Errorf("Name() = %q", svc.Name())
	}
	if h := svc.Health(context.Background()); h.Healthy() {
		t.Errorf("Health() = %+v, want unhealthy for unreachable API", h)
	}
	d := svc.Describe()
	if d.Type != "speech" || !strings.Contains(d.Details, "backend=remote") || !strings.Contains(d.Details, "MP3, WAV (core)") {
		t.Errorf("Describe() = %+v", d)
	}
}

func TestService_LocalLifecycle(t *testing.T) {
	cfg := localConfig(t)
	svc, err := New(cfg, WithEngine(&fakeEngine{}), WithCapabilities(audio.CoreCapabilities()), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if svc.Health(ctx).Healthy() {
		t.Error("local service healthy before Start")
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !svc.Health(ctx).Healthy() {
		t.Error("local service unhealthy after Start")
	}
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if svc.Health(ctx).Healthy() {
		t.Error("local service healthy after Stop")
	}
}

func TestService_ModelSetupFailure(t *testing.T) {
	cfg := localConfig(t)
	cfg.Connection.Local.Model.Source = filepath.Join(t.TempDir(), "missing.bin")
	svc, err := New(cfg, WithEngine(&fakeEngine{}), WithCapabilities(audio.CoreCapabilities()), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := svc.Start(context.Background()); !errors.IsCode(err, errors.ErrCodeModelSetupFailure) {
		t.Errorf("Start() error = %v, want MODEL_SETUP_FAILURE", err)
	}
}

func TestService_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc, err := New(localConfig(t), WithEngine(&fakeEngine{}), WithCapabilities(audio.CoreCapabilities()),
		WithLogger(logger.Nop()), WithMeter(provider.Meter("test")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	testutil.Start(t, svc)

	wav := testutil.SilenceWAV(t, 16000, 1, 2*time.Second)
	if _, err := await(t, svc.Transcribe(context.Background(), bytes.NewReader(wav), "wav", "", TranscriptionOptions{})); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	_, _ = await(t, svc.GenerateSpeech(context.Background(), "hi", GenerationOptions{}))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{"speech.operations", "speech.operation.duration", "speech.errors", "speech.audio.seconds"} {
		if !names[want] {
			t.Errorf("metric %s not recorded", want)
		}
	}
}

func TestOptionsMerge(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	req, err := cfg.Transcription.request("p", TranscriptionOptions{Verbose: util.Ptr(true), Temperature: util.Ptr(0.0)})
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if req.Model != "whisper-1" || req.Language != "auto" || req.Temperature != 0 || !req.Verbose || req.Prompt != "p" {
		t.Errorf("transcription request = %+v", req)
	}

	gen, err := cfg.Generation.request("x", GenerationOptions{Voice: "echo"})
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if gen.Model != "tts-1" || gen.Voice != "echo" || gen.ResponseFormat != "mp3" || gen.Speed != 1.0 {
		t.Errorf("generation request = %+v", gen)
	}

	if _, err := cfg.Generation.request("x", GenerationOptions{ResponseFormat: "midi"}); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
