package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// mp3ReadSize is one decode step: 1152 samples per frame, 2 channels, 2 bytes.
const mp3ReadSize = 1152 * 2 * 2

// MP3Decoder decodes MPEG-1/2 Layer III streams in pure Go.
//
// The decoder always produces interleaved stereo. The sample rate is taken
// from the first frame and assumed constant; streams that switch rates
// mid-way are not corrected.
type MP3Decoder struct{}

// Decode reads frames from the file at path until the stream ends.
func (d *MP3Decoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeError(FormatMP3, "open file", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, decodeError(FormatMP3, "read first frame", err)
	}

	var samples []int16
	if n := dec.Length(); n > 0 {
		samples = make([]int16, 0, n/2)
	}

	buf := make([]byte, mp3ReadSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, decodeError(FormatMP3, "canceled", err)
		}
		n, err := dec.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(buf[i:i+2])))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(FormatMP3, "decode frame", err)
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}
