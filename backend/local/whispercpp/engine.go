package whispercpp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/backend/local"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/process"
)

// DefaultBinary is the whisper.cpp command line tool name.
const DefaultBinary = "whisper-cli"

// Engine runs whisper.cpp through its command line tool.
type Engine struct {
	runner  *process.Runner
	tempDir string
	log     *logger.Logger
}

// New creates an engine that runs binary. An empty binary uses
// DefaultBinary; tempDir holds the per-call WAV files.
func New(binary, tempDir string, log *logger.Logger) *Engine {
	if binary == "" {
		binary = DefaultBinary
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("whispercpp")
	return &Engine{
		runner:  process.NewRunner(process.Config{Binary: binary}, log),
		tempDir: tempDir,
		log:     log,
	}
}

// Init checks the model file and binds it to a new context.
func (e *Engine) Init(_ context.Context, modelPath string) (local.Context, error) {
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("model %s is a directory", modelPath)
	}
	return &whisperContext{engine: e, model: modelPath}, nil
}

type whisperContext struct {
	engine   *Engine
	model    string
	segments []string
}

// Full writes samples to a temporary WAV file and runs the tool on it. The
// tool's exit code is the result code.
func (c *whisperContext) Full(ctx context.Context, params local.Params, samples []float32) (int, error) {
	c.segments = nil

	data, err := audio.EncodeWAV(&audio.Buffer{
		Samples:    toInt16(samples),
		SampleRate: audio.TargetSampleRate,
		Channels:   audio.TargetChannels,
	})
	if err != nil {
		return -1, err
	}

	if c.engine.tempDir != "" {
		if err := os.MkdirAll(c.engine.tempDir, 0o755); err != nil {
			return -1, err
		}
	}
	f, err := os.CreateTemp(c.engine.tempDir, "speechkit-whisper-*.wav")
	if err != nil {
		return -1, err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return -1, err
	}
	if err := f.Close(); err != nil {
		return -1, err
	}

	result, err := c.engine.runner.Run(ctx, process.Command{Args: Args(c.model, f.Name(), params)})
	if err != nil {
		if result == nil || result.ExitCode <= 0 || ctx.Err() != nil {
			return -1, err
		}
		return result.ExitCode, nil
	}

	c.segments = parseSegments(result.Stdout)
	return 0, nil
}

func (c *whisperContext) NumSegments() int { return len(c.segments) }

func (c *whisperContext) SegmentText(i int) string { return c.segments[i] }

func (c *whisperContext) Close() error {
	c.segments = nil
	return nil
}

// Args builds the whisper-cli arguments for one inference.
func Args(model, wavPath string, p local.Params) []string {
	lang := p.Language
	if lang == "" {
		lang = "auto"
	}
	args := []string{
		"-m", model,
		"-f", wavPath,
		"-t", strconv.Itoa(p.Threads),
		"-l", lang,
		"-tp", strconv.FormatFloat(p.Temperature, 'f', -1, 64),
		"-nt",
	}
	if p.Translate {
		args = append(args, "-tr")
	}
	if p.PrintProgress {
		args = append(args, "-pp")
	} else {
		args = append(args, "-np")
	}
	if p.InitialPrompt != "" {
		args = append(args, "--prompt", p.InitialPrompt)
	}
	return args
}

// parseSegments returns the non-blank stdout lines; with -nt the tool
// prints one segment per line.
func parseSegments(out []byte) []string {
	var segments []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			segments = append(segments, line)
		}
	}
	return segments
}

func toInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * 32767)
		out[i] = int16(max(-32768, min(32767, v)))
	}
	return out
}
