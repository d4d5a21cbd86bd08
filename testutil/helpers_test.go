package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/speechkit/audio"
	"github.com/kbukum/speechkit/component"
)

func TestSilenceWAVRoundTrip(t *testing.T) {
	data := SilenceWAV(t, 16000, 1, time.Second)
	if len(data) != 44+16000*2 {
		t.Fatalf("expected %d bytes, got %d", 44+16000*2, len(data))
	}
	buf, err := audio.DecodeWAV(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Frames() != 16000 || buf.SampleRate != 16000 || buf.Channels != 1 {
		t.Fatalf("unexpected buffer %d frames %d Hz %d ch", buf.Frames(), buf.SampleRate, buf.Channels)
	}
}

func TestSineBufferChannelsMatch(t *testing.T) {
	b := SineBuffer(8000, 2, 100*time.Millisecond, 440)
	if b.Frames() != 800 {
		t.Fatalf("expected 800 frames, got %d", b.Frames())
	}
	var nonZero bool
	for i := 0; i < len(b.Samples); i += 2 {
		if b.Samples[i] != b.Samples[i+1] {
			t.Fatalf("channels differ at frame %d", i/2)
		}
		if b.Samples[i] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("expected a non-silent tone")
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	AssertEmptyDir(t, dir)
	WriteFile(t, dir, "b.wav", []byte("b"))
	WriteFile(t, dir, "a.wav", []byte("a"))

	names := ListFiles(t, dir)
	if len(names) != 2 || names[0] != "a.wav" || names[1] != "b.wav" {
		t.Fatalf("unexpected listing %v", names)
	}
	if got := ListFiles(t, dir+"/missing"); len(got) != 0 {
		t.Fatalf("expected empty listing for missing dir, got %v", got)
	}
}

type lifecycle struct {
	started, stopped bool
}

func (l *lifecycle) Name() string                { return "lifecycle" }
func (l *lifecycle) Start(context.Context) error { l.started = true; return nil }
func (l *lifecycle) Stop(context.Context) error  { l.stopped = true; return nil }
func (l *lifecycle) Health(context.Context) component.Health {
	return component.Health{Name: l.Name(), Status: component.StatusHealthy}
}

func TestStartRegistersStop(t *testing.T) {
	c := &lifecycle{}
	t.Run("inner", func(t *testing.T) {
		Start(t, c)
		if !c.started {
			t.Fatal("expected component to be started")
		}
	})
	if !c.stopped {
		t.Fatal("expected component to be stopped after subtest cleanup")
	}
}
