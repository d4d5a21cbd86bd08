package audio

import (
	"fmt"
	"testing"
	"time"
)

func TestFloat32Sample(t *testing.T) {
	tests := []struct {
		in   int16
		want float32
	}{
		{0, 0},
		{32767, 1},
		{-32767, -1},
		{-32768, -1},
	}
	for _, tc := range tests {
		if got := Float32Sample(tc.in); got != tc.want {
			t.Errorf("Float32Sample(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, s := range []int16{-32768, -16384, -1, 1, 16384, 32767} {
		v := Float32Sample(s)
		if v < -1 || v > 1 {
			t.Errorf("Float32Sample(%d) = %v out of range", s, v)
		}
		if (s > 0) != (v > 0) {
			t.Errorf("Float32Sample(%d) = %v changed sign", s, v)
		}
	}
}

func TestBufferFloat32(t *testing.T) {
	b := &Buffer{Samples: []int16{0, 32767, -32768}, SampleRate: 16000, Channels: 1}
	got := b.Float32()
	want := []float32{0, 1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
	var nilBuf *Buffer
	if nilBuf.Float32() != nil || nilBuf.Frames() != 0 || nilBuf.Duration() != 0 {
		t.Error("nil buffer should be empty")
	}
}

func TestNormalizeProducesTargetLayout(t *testing.T) {
	tests := []struct {
		rate     int
		channels int
	}{
		{8000, 1},
		{16000, 2},
		{22050, 1},
		{44100, 2},
		{48000, 1},
		{48000, 6},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%dHz_%dch", tc.rate, tc.channels), func(t *testing.T) {
			in := &Buffer{
				Samples:    make([]int16, tc.rate*tc.channels),
				SampleRate: tc.rate,
				Channels:   tc.channels,
			}
			for i := range in.Samples {
				in.Samples[i] = int16(i % 1000)
			}

			out, err := Normalize(in)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if out.Channels != 1 || out.SampleRate != 16000 {
				t.Fatalf("expected mono 16 kHz, got %d ch %d Hz", out.Channels, out.SampleRate)
			}
			if out.Frames() != 16000 {
				t.Errorf("expected 16000 frames for one second, got %d", out.Frames())
			}
			if out.Duration() != time.Second {
				t.Errorf("expected 1s duration, got %v", out.Duration())
			}

			again, err := Normalize(out)
			if err != nil {
				t.Fatalf("second Normalize failed: %v", err)
			}
			if again != out {
				t.Error("Normalize should return a normalized buffer unchanged")
			}
		})
	}
}

func TestNormalizeIdentity(t *testing.T) {
	in := &Buffer{Samples: []int16{1, 2, 3}, SampleRate: 16000, Channels: 1}
	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Fatal("expected the same buffer back")
	}
}

func TestNormalizeSilence(t *testing.T) {
	in := &Buffer{Samples: make([]int16, 44100*2), SampleRate: 44100, Channels: 2}
	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Samples) != 16000 {
		t.Fatalf("expected 16000 samples, got %d", len(out.Samples))
	}
	for i, s := range out.Samples {
		if s != 0 {
			t.Fatalf("sample %d = %d, want 0", i, s)
		}
	}
}

func TestDownmixAverages(t *testing.T) {
	in := &Buffer{Samples: []int16{100, 300, -100, -300, 32767, 32767}, SampleRate: 16000, Channels: 2}
	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int16{200, -200, 32767}
	if len(out.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out.Samples))
	}
	for i := range want {
		if out.Samples[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, out.Samples[i], want[i])
		}
	}
}

func TestResampleInterpolates(t *testing.T) {
	out := resample([]int16{0, 100, 200, 300}, 8000, 16000)
	want := []int16{0, 50, 100, 150, 200, 250, 300, 300}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, out[i], want[i])
		}
	}

	down := resample([]int16{0, 10, 20, 30, 40, 50}, 48000, 16000)
	if len(down) != 2 || down[0] != 0 || down[1] != 30 {
		t.Errorf("unexpected downsample %v", down)
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   *Buffer
	}{
		{"nil", nil},
		{"zero channels", &Buffer{SampleRate: 8000}},
		{"zero rate", &Buffer{Channels: 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Normalize(tc.in); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	out, err := Normalize(&Buffer{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsNormalized() || len(out.Samples) != 0 {
		t.Fatalf("expected empty normalized buffer, got %+v", out)
	}
}
