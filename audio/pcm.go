package audio

import "time"

const (
	// TargetSampleRate is the rate the local engine consumes.
	TargetSampleRate = 16000
	// TargetChannels is the channel count the local engine consumes.
	TargetChannels = 1
)

// Buffer holds interleaved signed 16-bit PCM samples.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// IsNormalized reports whether the buffer is already mono at 16 kHz.
func (b *Buffer) IsNormalized() bool {
	return b != nil && b.Channels == TargetChannels && b.SampleRate == TargetSampleRate
}

// Float32 converts every sample with Float32Sample.
func (b *Buffer) Float32() []float32 {
	if b == nil {
		return nil
	}
	out := make([]float32, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = Float32Sample(s)
	}
	return out
}

// Float32Sample scales s by 1/32767 and clamps the result to [-1, 1].
func Float32Sample(s int16) float32 {
	v := float32(s) / 32767
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// clampInt16 saturates v to the int16 range.
func clampInt16(v int64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
