package audio

import (
	"context"
	"encoding/binary"
	"strconv"

	"github.com/kbukum/speechkit/process"
)

// FFmpegDecoder decodes container formats (M4A, AAC, OGG, WEBM) by running
// ffmpeg. The first audio stream is decoded to exhaustion and resampled to
// mono 16 kHz signed 16-bit PCM in the same pass.
type FFmpegDecoder struct {
	runner *process.Runner
}

// NewFFmpegDecoder creates a decoder that invokes ffmpeg through runner.
func NewFFmpegDecoder(runner *process.Runner) *FFmpegDecoder {
	return &FFmpegDecoder{runner: runner}
}

// Decode runs ffmpeg on the file at path.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	format := Detect(path)
	result, err := d.runner.Run(ctx, process.Command{Args: ffmpegArgs(path)})
	if err != nil {
		msg := "ffmpeg failed"
		if tail := result.StderrTail(256); tail != "" {
			msg += ": " + tail
		}
		return nil, decodeError(format, msg, err)
	}

	out := result.Stdout
	samples := make([]int16, len(out)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(out[i*2:]))
	}
	return &Buffer{
		Samples:    samples,
		SampleRate: TargetSampleRate,
		Channels:   TargetChannels,
	}, nil
}

func ffmpegArgs(path string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-map", "0:a:0",
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(TargetChannels),
		"-ar", strconv.Itoa(TargetSampleRate),
		"-",
	}
}
