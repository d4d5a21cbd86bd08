package audio

import (
	"fmt"
	"math"
)

// Normalize converts b to mono 16 kHz 16-bit PCM. Channels are averaged and
// the result is resampled with linear interpolation. A buffer that is already
// normalized is returned unchanged, so Normalize is idempotent.
func Normalize(b *Buffer) (*Buffer, error) {
	if b == nil {
		return nil, fmt.Errorf("audio: normalize nil buffer")
	}
	if b.IsNormalized() {
		return b, nil
	}
	if b.Channels <= 0 {
		return nil, fmt.Errorf("audio: invalid channel count %d", b.Channels)
	}
	if b.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", b.SampleRate)
	}

	mono := downmix(b.Samples, b.Channels)
	return &Buffer{
		Samples:    resample(mono, b.SampleRate, TargetSampleRate),
		SampleRate: TargetSampleRate,
		Channels:   TargetChannels,
	}, nil
}

// downmix averages interleaved channels into one. A trailing partial frame is dropped.
func downmix(samples []int16, channels int) []int16 {
	if channels == 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]int16, frames)
	for i := range frames {
		var sum int64
		for ch := range channels {
			sum += int64(samples[i*channels+ch])
		}
		out[i] = int16(sum / int64(channels))
	}
	return out
}

// resample converts mono samples from inRate to outRate by linear interpolation.
func resample(samples []int16, inRate, outRate int) []int16 {
	if inRate == outRate {
		return samples
	}
	outLen := int(int64(len(samples)) * int64(outRate) / int64(inRate))
	out := make([]int16, outLen)
	step := float64(inRate) / float64(outRate)

	pos := 0.0
	for i := range out {
		idx := min(int(pos), len(samples)-1)
		frac := pos - float64(idx)
		s0 := float64(samples[idx])
		s1 := s0
		if idx+1 < len(samples) {
			s1 = float64(samples[idx+1])
		}
		out[i] = clampInt16(int64(math.Round(s0 + (s1-s0)*frac)))
		pos += step
	}
	return out
}
