// Package audio decodes, processes and encodes the PCM used for voice samples.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat is returned for containers no decoder is wired for.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

const resampleQuality = 4

// LoadOptions controls conversion applied while loading.
type LoadOptions struct {
	// SampleRate resamples to this rate. Zero keeps the native rate.
	SampleRate int
	// Mono downmixes to a single channel.
	Mono bool
}

// DecodeMedia opens and decodes the audio file at path. The decoder is picked
// by extension; unknown extensions are tried as WAV, then MP3.
// The caller must Close the returned streamer.
func DecodeMedia(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".wave":
		return decodeWith(path, decodeWAV)
	case ".mp3":
		return decodeWith(path, decodeMP3)
	case ".flac":
		return decodeWith(path, decodeFLAC)
	case ".ogg", ".oga":
		return decodeWith(path, decodeVorbis)
	case ".m4a", ".aac":
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	streamer, format, err := decodeWith(path, decodeWAV)
	if err == nil {
		return streamer, format, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, beep.Format{}, err
	}
	// Reopen for the MP3 attempt, a failed WAV probe leaves the offset unknown
	return decodeWith(path, decodeMP3)
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func decodeWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return wav.Decode(f) }
func decodeMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return mp3.Decode(f) }
func decodeFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, error)   { return flac.Decode(f) }
func decodeVorbis(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }

func decodeWith(path string, decode decodeFunc) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		slog.Debug("Audio: decode failed", "path", path, "error", err)
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if format.SampleRate <= 0 || format.NumChannels <= 0 {
		streamer.Close()
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: invalid format %+v", filepath.Base(path), format)
	}
	return &fileStreamer{StreamSeekCloser: streamer, file: f}, format, nil
}

// fileStreamer guarantees the file handle is released on Close; not every
// beep decoder closes its reader.
type fileStreamer struct {
	beep.StreamSeekCloser
	file *os.File
}

func (s *fileStreamer) Close() error {
	err := s.StreamSeekCloser.Close()
	if cerr := s.file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

// GetDuration returns the duration of the audio file at the given path.
func GetDuration(path string) (time.Duration, error) {
	streamer, format, err := DecodeMedia(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// Load decodes the whole file at path into a Buffer.
func Load(path string, opts LoadOptions) (*Buffer, error) {
	streamer, format, err := DecodeMedia(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	rate := format.SampleRate
	if opts.SampleRate > 0 && beep.SampleRate(opts.SampleRate) != rate {
		s = beep.Resample(resampleQuality, rate, beep.SampleRate(opts.SampleRate), streamer)
		rate = beep.SampleRate(opts.SampleRate)
		slog.Debug("Audio: resampling", "path", path, "from", int(format.SampleRate), "to", opts.SampleRate)
	}

	frames, err := drain(s)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	buf := &Buffer{SampleRate: int(rate)}
	switch {
	case opts.Mono || format.NumChannels == 1:
		buf.Channels = 1
		buf.Samples = make([]float64, len(frames))
		for i, fr := range frames {
			if format.NumChannels == 1 {
				buf.Samples[i] = fr[0]
			} else {
				buf.Samples[i] = (fr[0] + fr[1]) / 2
			}
		}
	default:
		buf.Channels = 2
		buf.Samples = make([]float64, 0, 2*len(frames))
		for _, fr := range frames {
			buf.Samples = append(buf.Samples, fr[0], fr[1])
		}
	}
	return buf, nil
}

func drain(s beep.Streamer) ([][2]float64, error) {
	var out [][2]float64
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		out = append(out, chunk[:n]...)
		if !ok {
			break
		}
	}
	return out, s.Err()
}
