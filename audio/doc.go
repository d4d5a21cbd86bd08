// Package audio identifies audio formats, decodes them to 16-bit PCM and
// normalizes PCM to the mono 16 kHz layout the local engine consumes.
//
// WAV and MP3 are always decodable. FLAC, M4A, AAC, OGG and WEBM belong to
// the extended tier, which is enabled by a Capabilities value probed once at
// startup:
//
//	caps := audio.ProbeCapabilities(audio.CapabilityConfig{Extended: audio.ExtendedAuto})
//	decoders := audio.NewDecoderSet(caps)
//	dec, err := decoders.For(audio.Detect("audio/flac"))
package audio
