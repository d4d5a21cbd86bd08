// Package testutil holds shared test fixtures: WAV builders for sine tones
// and silence, file system helpers for temp-directory assertions, and a
// helper that starts a component for the duration of a test.
//
//	data := testutil.SilenceWAV(t, 16000, 1, time.Second)
//	path := testutil.WriteFile(t, t.TempDir(), "clip.wav", data)
//	testutil.Start(t, service)
package testutil
