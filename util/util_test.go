package util

import "testing"

func TestPtrDeref(t *testing.T) {
	if p := Ptr(0.9); *p != 0.9 {
		t.Errorf("Ptr(0.9) = %v", *p)
	}
	if Deref(Ptr("x")) != "x" {
		t.Error("Deref(Ptr(x)) != x")
	}
	var nilBool *bool
	if Deref(nilBool) {
		t.Error("Deref(nil) should be false")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "whisper-1"); got != "whisper-1" {
		t.Errorf("Coalesce strings = %q", got)
	}
	if got := Coalesce("tts-1-hd", "tts-1"); got != "tts-1-hd" {
		t.Errorf("Coalesce keeps first = %q", got)
	}
	if got := Coalesce(0.0, 1.0); got != 1.0 {
		t.Errorf("Coalesce floats = %v", got)
	}
	zero := 0.0
	if got := Coalesce(&zero, Ptr(0.9)); *got != 0 {
		t.Errorf("Coalesce pointers = %v, want explicit zero", *got)
	}
	if got := Coalesce[string](); got != "" {
		t.Errorf("Coalesce() = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input  string
		prefix int
		want   string
	}{
		{"sk-proj-abcdef", 3, "sk-***"},
		{"short", 10, "***"},
		{"", 3, "***"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskSecret(tc.input, tc.prefix); got != tc.want {
				t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.input, tc.prefix, got, tc.want)
			}
		})
	}
}
