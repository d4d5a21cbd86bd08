package audio

import (
	"context"
	"errors"
	"io"

	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC files in pure Go, scaling any bit depth to 16 bits.
type FLACDecoder struct{}

// Decode parses frames from the file at path until the stream ends.
func (d *FLACDecoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, decodeError(FormatFLAC, "open stream", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bits := int(info.BitsPerSample)
	if channels <= 0 || info.SampleRate == 0 {
		return nil, decodeError(FormatFLAC, "invalid stream info", nil)
	}

	var samples []int16
	if info.NSamples > 0 {
		samples = make([]int16, 0, int(info.NSamples)*channels)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, decodeError(FormatFLAC, "canceled", err)
		}
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(FormatFLAC, "parse frame", err)
		}
		for i := range int(frame.BlockSize) {
			for ch := range channels {
				samples = append(samples, scaleToInt16(frame.Subframes[ch].Samples[i], bits))
			}
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: int(info.SampleRate),
		Channels:   channels,
	}, nil
}

// scaleToInt16 shifts a sample of the given bit depth into the 16-bit range.
func scaleToInt16(sample int32, bits int) int16 {
	switch {
	case bits > 16:
		return clampInt16(int64(sample >> (bits - 16)))
	case bits < 16 && bits > 0:
		return clampInt16(int64(sample) << (16 - bits))
	default:
		return clampInt16(int64(sample))
	}
}
