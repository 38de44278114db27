package voice

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"voicekit/pkg/audio"
	"voicekit/pkg/config"

	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) (*Library, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Voices.Dir = filepath.Join(t.TempDir(), "voices")
	var out bytes.Buffer
	return New(cfg, &out), &out
}

func tone(n, rate int, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func writeWAV(t *testing.T, path string, samples []float64, rate, channels int) string {
	t.Helper()
	require.NoError(t, audio.WriteWAV(path, &audio.Buffer{Samples: samples, SampleRate: rate, Channels: channels}))
	return path
}

func loadStored(t *testing.T, path string) *audio.Buffer {
	t.Helper()
	buf, err := audio.Load(path, audio.LoadOptions{})
	require.NoError(t, err)
	return buf
}
