package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// WriteWAV encodes buf as 16-bit PCM WAV at path. The data is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial file.
func WriteWAV(path string, buf *Buffer) error {
	if buf.Channels != 1 && buf.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d", buf.Channels)
	}
	if buf.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", buf.SampleRate)
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(buf.SampleRate),
		NumChannels: buf.Channels,
		Precision:   2,
	}
	if err := wav.Encode(f, newBufferStreamer(buf), format); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// bufferStreamer streams a Buffer as beep frames. Mono samples are copied to
// both channels, which the mono WAV encoder averages back to the same value.
type bufferStreamer struct {
	buf *Buffer
	pos int // frame index
}

func newBufferStreamer(buf *Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf}
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	for n < len(samples) && s.pos < frames {
		if s.buf.Channels == 1 {
			v := clamp(s.buf.Samples[s.pos])
			samples[n] = [2]float64{v, v}
		} else {
			i := s.pos * 2
			samples[n] = [2]float64{clamp(s.buf.Samples[i]), clamp(s.buf.Samples[i+1])}
		}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
