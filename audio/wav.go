package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// wavHeader is the canonical 44-byte PCM WAV header.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

type wavFormat struct {
	audioFormat   uint16
	channels      int
	sampleRate    int
	blockAlign    int
	bitsPerSample int
}

// WAVDecoder reads RIFF/WAVE files holding integer PCM (8, 16, 24 or 32 bit)
// or IEEE float (32 or 64 bit), including WAVE_FORMAT_EXTENSIBLE.
type WAVDecoder struct{}

// Decode reads the file at path.
func (d *WAVDecoder) Decode(_ context.Context, path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, decodeError(FormatWAV, "read file", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV converts WAV bytes to 16-bit PCM at the file's rate and channel count.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, decodeError(FormatWAV, "missing RIFF/WAVE header", nil)
	}

	var (
		fmtChunk *wavFormat
		pcm      []byte
		found    bool
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		end := body + size
		if end > len(data) {
			// Streaming writers leave the data size unset or too large.
			end = len(data)
		}

		switch id {
		case "fmt ":
			f, err := parseWAVFormat(data[body:end])
			if err != nil {
				return nil, err
			}
			fmtChunk = f
		case "data":
			pcm = data[body:end]
			found = true
		}
		if found && fmtChunk != nil {
			break
		}

		off = end + (end-body)%2
	}

	if fmtChunk == nil {
		return nil, decodeError(FormatWAV, "missing fmt chunk", nil)
	}
	if !found {
		return nil, decodeError(FormatWAV, "missing data chunk", nil)
	}

	return &Buffer{
		Samples:    convertWAVSamples(pcm, fmtChunk),
		SampleRate: fmtChunk.sampleRate,
		Channels:   fmtChunk.channels,
	}, nil
}

func parseWAVFormat(b []byte) (*wavFormat, error) {
	if len(b) < 16 {
		return nil, decodeError(FormatWAV, "fmt chunk too short", nil)
	}
	f := &wavFormat{
		audioFormat:   binary.LittleEndian.Uint16(b[0:2]),
		channels:      int(binary.LittleEndian.Uint16(b[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(b[4:8])),
		blockAlign:    int(binary.LittleEndian.Uint16(b[12:14])),
		bitsPerSample: int(binary.LittleEndian.Uint16(b[14:16])),
	}
	if f.audioFormat == wavFormatExtensible {
		if len(b) < 26 {
			return nil, decodeError(FormatWAV, "extensible fmt chunk too short", nil)
		}
		// The sub-format GUID starts with the actual format code.
		f.audioFormat = binary.LittleEndian.Uint16(b[24:26])
	}

	if f.channels <= 0 {
		return nil, decodeError(FormatWAV, fmt.Sprintf("invalid channel count %d", f.channels), nil)
	}
	if f.sampleRate <= 0 {
		return nil, decodeError(FormatWAV, fmt.Sprintf("invalid sample rate %d", f.sampleRate), nil)
	}
	switch {
	case f.audioFormat == wavFormatPCM && (f.bitsPerSample == 8 || f.bitsPerSample == 16 || f.bitsPerSample == 24 || f.bitsPerSample == 32):
	case f.audioFormat == wavFormatIEEEFloat && (f.bitsPerSample == 32 || f.bitsPerSample == 64):
	default:
		return nil, decodeError(FormatWAV, fmt.Sprintf("unsupported encoding (format %d, %d bits)", f.audioFormat, f.bitsPerSample), nil)
	}
	if minAlign := f.channels * f.bitsPerSample / 8; f.blockAlign < minAlign {
		f.blockAlign = minAlign
	}
	return f, nil
}

func convertWAVSamples(pcm []byte, f *wavFormat) []int16 {
	bytesPerSample := f.bitsPerSample / 8
	frames := len(pcm) / f.blockAlign
	out := make([]int16, 0, frames*f.channels)

	for i := range frames {
		frame := pcm[i*f.blockAlign:]
		for ch := range f.channels {
			b := frame[ch*bytesPerSample : (ch+1)*bytesPerSample]
			out = append(out, wavSample(b, f.audioFormat, f.bitsPerSample))
		}
	}
	return out
}

func wavSample(b []byte, format uint16, bits int) int16 {
	if format == wavFormatIEEEFloat {
		var v float64
		if bits == 32 {
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		} else {
			v = math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
		return clampInt16(int64(math.Round(v * 32767)))
	}
	switch bits {
	case 8:
		return int16(int(b[0])-128) << 8
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
		return int16(v >> 8)
	default:
		return int16(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

// EncodeWAV writes b as a canonical 16-bit PCM WAV file.
func EncodeWAV(b *Buffer) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("audio: encode nil buffer")
	}
	if b.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be positive, got %d", b.SampleRate)
	}
	if b.Channels <= 0 {
		return nil, fmt.Errorf("audio: channel count must be positive, got %d", b.Channels)
	}

	const bitsPerSample = 16
	channels := uint16(b.Channels)
	dataSize := uint32(len(b.Samples) * 2)

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   wavFormatPCM,
		NumChannels:   channels,
		SampleRate:    uint32(b.SampleRate),
		ByteRate:      uint32(b.SampleRate) * uint32(channels) * bitsPerSample / 8,
		BlockAlign:    channels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(b.Samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("audio: write WAV header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, b.Samples); err != nil {
		return nil, fmt.Errorf("audio: write WAV data: %w", err)
	}
	return buf.Bytes(), nil
}
