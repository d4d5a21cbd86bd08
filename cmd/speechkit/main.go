// Command speechkit transcribes audio files and synthesizes speech from the
// command line using the configured backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/speechkit/component"
	"github.com/kbukum/speechkit/config"
	"github.com/kbukum/speechkit/logger"
	"github.com/kbukum/speechkit/speech"
	"github.com/kbukum/speechkit/util"
	"github.com/kbukum/speechkit/version"
)

const usage = `usage: speechkit [-config file] [-env file] <command> [flags]

commands:
  transcribe  -file clip.mp3 [-type audio/mpeg] [-prompt ..] [-language ..] [-verbose]
  speak       -text "..." -out hello.mp3 [-voice ..] [-format ..] [-speed ..]
  version
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("speechkit", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configFile := global.String("config", "", "config file path")
	envFile := global.String("env", "", ".env file path")
	if err := global.Parse(args); err != nil {
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "version":
		fmt.Fprintln(stdout, version.Get().String())
		return 0
	case "transcribe", "speak":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	opts = append(opts, config.WithEnvPrefix("SPEECHKIT"))

	cfg, err := speech.LoadConfig("speechkit", opts...)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger.Init(cfg.Logging)
	log := logger.WithComponent("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithRequestID(ctx, uuid.NewString())

	svc, err := speech.New(*cfg)
	if err != nil {
		log.Error("service setup failed", logger.ErrorFields("new", err))
		return 1
	}
	log.Debug("configured", logger.Fields(
		logger.FieldBackend, cfg.Connection.Kind.String(),
		"api_key", util.MaskSecret(cfg.Connection.Remote.APIKey, 3),
	))

	components := component.NewRegistry(log)
	if err := components.Register(svc); err != nil {
		log.Error("register failed", logger.ErrorFields("register", err))
		return 1
	}
	if err := components.StartAll(ctx); err != nil {
		log.Error("start failed", logger.ErrorFields("start", err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := components.StopAll(shutdownCtx); err != nil {
			log.Warn("stop failed", logger.ErrorFields("stop", err))
		}
	}()

	switch cmd {
	case "transcribe":
		err = transcribe(ctx, svc, cmdArgs, stdout, stderr)
	case "speak":
		err = speak(ctx, svc, cmdArgs, stdout, stderr)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.WithContext(ctx).Error(cmd+" failed", logger.ErrorFields(cmd, err))
		return 1
	}
	return 0
}

func transcribe(ctx context.Context, svc *speech.Service, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "audio file to transcribe")
	mediaType := fs.String("type", "", "media type or extension (default: from file name)")
	prompt := fs.String("prompt", "", "prompt that biases the transcription")
	language := fs.String("language", "", "ISO-639-1 language hint")
	model := fs.String("model", "", "model name")
	verbose := fs.Bool("verbose", false, "print detected language and duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	if *mediaType == "" {
		*mediaType = *file
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := speech.TranscriptionOptions{Model: *model, Language: *language}
	if *verbose {
		opts.Verbose = util.Ptr(true)
	}
	res, err := svc.Transcribe(ctx, f, *mediaType, *prompt, opts).Await(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, res.Text)
	if res.Attributes != nil {
		fmt.Fprintf(stdout, "language=%s duration=%.2fs\n", res.Attributes.Language, res.Attributes.Duration)
	}
	return nil
}

func speak(ctx context.Context, svc *speech.Service, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("text", "", "text to synthesize")
	out := fs.String("out", "", "output audio file")
	voice := fs.String("voice", "", "voice name")
	format := fs.String("format", "", "response format: mp3, opus, aac, flac, pcm or wav")
	speed := fs.Float64("speed", 0, "speed between 0.25 and 4")
	model := fs.String("model", "", "model name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *text == "" || *out == "" {
		return fmt.Errorf("-text and -out are required")
	}

	res, err := svc.GenerateSpeech(ctx, *text, speech.GenerationOptions{
		Model:          *model,
		Voice:          *voice,
		ResponseFormat: *format,
		Speed:          *speed,
	}).Await(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, res.Audio, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %d bytes (%s) to %s\n", len(res.Audio), res.MediaType, *out)
	return nil
}
