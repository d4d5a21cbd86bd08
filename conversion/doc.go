// Package conversion prepares caller audio for a backend.
//
// In ModePCM the bytes are written to a uniquely named temp file, decoded by
// the decoder for the detected format and normalized to mono 16 kHz PCM. The
// temp file is removed on every path. In ModePassthrough the bytes are kept
// as they are and only an upload file name and media type are chosen.
package conversion
