package testutil

import (
	"bytes"
	_ "embed"
	"math"
	"testing"
	"time"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/kbukum/speechkit/audio"
)

// flacBlockSize is the number of frames per FLAC block written by FLAC.
const flacBlockSize = 4096

// MP3Clip is about 1.5 s of MPEG-2 Layer III audio, mono at 22050 Hz.
//
//go:embed testdata/clip.mp3
var MP3Clip []byte

// SineBuffer returns a sine tone at freq Hz, identical on every channel,
// at 0.5 full scale.
func SineBuffer(rate, channels int, d time.Duration, freq float64) *audio.Buffer {
	frames := int(int64(rate) * int64(d) / int64(time.Second))
	samples := make([]int16, frames*channels)
	for i := range frames {
		v := int16(math.Round(16383 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))))
		for ch := range channels {
			samples[i*channels+ch] = v
		}
	}
	return &audio.Buffer{Samples: samples, SampleRate: rate, Channels: channels}
}

// SilenceBuffer returns d of digital silence.
func SilenceBuffer(rate, channels int, d time.Duration) *audio.Buffer {
	frames := int(int64(rate) * int64(d) / int64(time.Second))
	return &audio.Buffer{Samples: make([]int16, frames*channels), SampleRate: rate, Channels: channels}
}

// WAV encodes b as a 16-bit PCM WAV file.
func WAV(tb testing.TB, b *audio.Buffer) []byte {
	tb.Helper()
	data, err := audio.EncodeWAV(b)
	if err != nil {
		tb.Fatalf("failed to encode WAV fixture: %v", err)
	}
	return data
}

// SineWAV returns a sine tone encoded as WAV.
func SineWAV(tb testing.TB, rate, channels int, d time.Duration, freq float64) []byte {
	tb.Helper()
	return WAV(tb, SineBuffer(rate, channels, d, freq))
}

// SilenceWAV returns silence encoded as WAV.
func SilenceWAV(tb testing.TB, rate, channels int, d time.Duration) []byte {
	tb.Helper()
	return WAV(tb, SilenceBuffer(rate, channels, d))
}

// FLAC encodes b as a 16-bit FLAC stream with verbatim subframes. Only mono
// and stereo buffers are supported.
func FLAC(tb testing.TB, b *audio.Buffer) []byte {
	tb.Helper()
	channels := frame.ChannelsMono
	switch b.Channels {
	case 1:
	case 2:
		channels = frame.ChannelsLR
	default:
		tb.Fatalf("FLAC fixture supports 1 or 2 channels, got %d", b.Channels)
	}

	var out bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(b.SampleRate),
		NChannels:     uint8(b.Channels),
		BitsPerSample: 16,
		NSamples:      uint64(b.Frames()),
	}
	enc, err := flac.NewEncoder(&out, info)
	if err != nil {
		tb.Fatalf("failed to create FLAC encoder: %v", err)
	}
	enc.EnablePredictionAnalysis(false)

	for start := 0; start < b.Frames(); start += flacBlockSize {
		n := min(flacBlockSize, b.Frames()-start)
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(b.SampleRate),
				Channels:          channels,
				BitsPerSample:     16,
			},
		}
		for ch := range b.Channels {
			samples := make([]int32, n)
			for i := range n {
				samples[i] = int32(b.Samples[(start+i)*b.Channels+ch])
			}
			f.Subframes = append(f.Subframes, &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			})
		}
		if err := enc.WriteFrame(f); err != nil {
			tb.Fatalf("failed to write FLAC frame: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("failed to close FLAC encoder: %v", err)
	}
	return out.Bytes()
}
