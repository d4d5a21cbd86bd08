package audio

import (
	"path"
	"strings"
)

// Format identifies an audio container/codec family.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatM4A     Format = "m4a"
	FormatAAC     Format = "aac"
	FormatFLAC    Format = "flac"
	FormatOGG     Format = "ogg"
	FormatWEBM    Format = "webm"
	FormatUnknown Format = "unknown"
)

var mediaTypeFormats = map[string]Format{
	"audio/wav":      FormatWAV,
	"audio/vnd.wav":  FormatWAV,
	"audio/vnd.wave": FormatWAV,
	"audio/wave":     FormatWAV,
	"audio/x-wav":    FormatWAV,
	"audio/x-pn-wav": FormatWAV,
	"audio/mpeg":     FormatMP3,
	"audio/mp3":      FormatMP3,
	"audio/mp4":      FormatM4A,
	"audio/m4a":      FormatM4A,
	"audio/x-m4a":    FormatM4A,
	"audio/aac":      FormatAAC,
	"audio/flac":     FormatFLAC,
	"audio/x-flac":   FormatFLAC,
	"audio/ogg":      FormatOGG,
	"audio/webm":     FormatWEBM,
}

var extensionFormats = map[string]Format{
	"wav":  FormatWAV,
	"wave": FormatWAV,
	"mp3":  FormatMP3,
	"m4a":  FormatM4A,
	"mp4":  FormatM4A,
	"aac":  FormatAAC,
	"flac": FormatFLAC,
	"ogg":  FormatOGG,
	"oga":  FormatOGG,
	"webm": FormatWEBM,
	"weba": FormatWEBM,
}

var canonicalMediaTypes = map[Format]string{
	FormatWAV:  "audio/wav",
	FormatMP3:  "audio/mpeg",
	FormatM4A:  "audio/mp4",
	FormatAAC:  "audio/aac",
	FormatFLAC: "audio/flac",
	FormatOGG:  "audio/ogg",
	FormatWEBM: "audio/webm",
}

// Detect maps a media type, a bare extension or a file name to a Format.
// Matching is case-insensitive and ignores media type parameters. Detect
// never fails: anything unrecognized is FormatUnknown.
func Detect(mediaTypeOrExtension string) Format {
	s := strings.ToLower(strings.TrimSpace(mediaTypeOrExtension))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return FormatUnknown
	}
	if f, ok := mediaTypeFormats[s]; ok {
		return f
	}
	if strings.HasPrefix(s, "audio/") {
		return FormatUnknown
	}
	if ext := path.Ext(s); ext != "" {
		s = ext[1:]
	}
	if f, ok := extensionFormats[s]; ok {
		return f
	}
	return FormatUnknown
}

// String returns the format tag.
func (f Format) String() string {
	if f == "" {
		return string(FormatUnknown)
	}
	return string(f)
}

// Known reports whether f is one of the recognized formats.
func (f Format) Known() bool {
	_, ok := canonicalMediaTypes[f]
	return ok
}

// Extension returns the file extension used when uploading audio of this
// format. WEBM audio uploads as "weba".
func (f Format) Extension() string {
	switch f {
	case FormatWEBM:
		return "weba"
	case "":
		return string(FormatUnknown)
	}
	return string(f)
}

// MediaType returns the canonical media type, or application/octet-stream
// for unknown formats.
func (f Format) MediaType() string {
	if mt, ok := canonicalMediaTypes[f]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Core reports whether f is decoded without the extended capability.
func (f Format) Core() bool {
	return f == FormatWAV || f == FormatMP3
}

// KnownFormats returns every recognized format in display order.
func KnownFormats() []Format {
	return []Format{FormatAAC, FormatFLAC, FormatM4A, FormatMP3, FormatOGG, FormatWAV, FormatWEBM}
}
