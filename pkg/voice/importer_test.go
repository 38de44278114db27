package voice

import (
	"os"
	"path/filepath"
	"testing"

	"voicekit/pkg/audio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	lib, out := newTestLibrary(t)
	src := filepath.Join(t.TempDir(), "raw.wav")

	// 0.5s silence, 1s tone, 0.5s silence at 16 kHz
	const rate = 16000
	samples := append(make([]float64, rate/2), tone(rate, rate, 220, 0.3)...)
	samples = append(samples, make([]float64, rate/2)...)
	writeWAV(t, src, samples, rate, 1)

	path, err := lib.Add(AddRequest{Source: src, Speaker: "Emma", Language: "en", Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Dir(), "en-Emma_female.wav"), path)
	assert.FileExists(t, path)

	stored := loadStored(t, path)
	assert.Equal(t, 24000, stored.SampleRate)
	assert.True(t, stored.IsMono())
	assert.InDelta(t, 0.95, audio.Peak(stored.Samples), 1e-3)
	// silence trimmed to frame resolution
	assert.InDelta(t, 1.0, stored.Seconds(), 0.15)

	assert.Contains(t, out.String(), "Processing audio: "+src)
	assert.Contains(t, out.String(), "Voice added: "+path)
	assert.Contains(t, out.String(), "Speaker name for scripts: 'Emma'")
}

func TestAdd_Defaults(t *testing.T) {
	lib, _ := newTestLibrary(t)
	src := writeWAV(t, filepath.Join(t.TempDir(), "raw.wav"), tone(24000, 24000, 330, 0.5), 24000, 1)

	_, err := os.Stat(lib.Dir())
	require.True(t, os.IsNotExist(err), "voices dir should not exist yet")

	path, err := lib.Add(AddRequest{Source: src, Speaker: "Noah"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Dir(), "en-Noah_neutral.wav"), path)
	assert.DirExists(t, lib.Dir())
}

func TestAdd_ExplicitDir(t *testing.T) {
	lib, _ := newTestLibrary(t)
	src := writeWAV(t, filepath.Join(t.TempDir(), "raw.wav"), tone(12000, 24000, 330, 0.5), 24000, 1)
	dir := filepath.Join(t.TempDir(), "nested", "voices")

	path, err := lib.Add(AddRequest{Source: src, Speaker: "Ines", Language: "pt", Gender: "female", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pt-Ines_female.wav"), path)
	assert.FileExists(t, path)
}

func TestAdd_StereoSourceIsDownmixed(t *testing.T) {
	lib, _ := newTestLibrary(t)
	left := tone(24000, 48000, 440, 0.4)
	stereo := make([]float64, 0, 2*len(left))
	for _, v := range left {
		stereo = append(stereo, v, v)
	}
	src := writeWAV(t, filepath.Join(t.TempDir(), "stereo.wav"), stereo, 48000, 2)

	path, err := lib.Add(AddRequest{Source: src, Speaker: "Emma"})
	require.NoError(t, err)

	stored := loadStored(t, path)
	assert.Equal(t, 1, stored.Channels)
	assert.Equal(t, 24000, stored.SampleRate)
	assert.InDelta(t, 0.95, audio.Peak(stored.Samples), 1e-3)
}

func TestAdd_Errors(t *testing.T) {
	lib, _ := newTestLibrary(t)
	silent := writeWAV(t, filepath.Join(t.TempDir(), "silent.wav"), make([]float64, 24000), 24000, 1)

	t.Run("SilentSource", func(t *testing.T) {
		_, err := lib.Add(AddRequest{Source: silent, Speaker: "Emma"})
		assert.ErrorIs(t, err, audio.ErrSilentAudio)
		assert.NoFileExists(t, filepath.Join(lib.Dir(), "en-Emma_neutral.wav"))
	})

	t.Run("MissingSource", func(t *testing.T) {
		_, err := lib.Add(AddRequest{Source: filepath.Join(t.TempDir(), "nope.wav"), Speaker: "Emma"})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("UnsupportedSource", func(t *testing.T) {
		_, err := lib.Add(AddRequest{Source: filepath.Join(t.TempDir(), "clip.m4a"), Speaker: "Emma"})
		assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	})

	t.Run("InvalidSpeaker", func(t *testing.T) {
		_, err := lib.Add(AddRequest{Source: silent, Speaker: "../Emma"})
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestAdd_BandFilter(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.cfg.Import.HighPassHz = 80
	lib.cfg.Import.LowPassHz = 8000
	src := writeWAV(t, filepath.Join(t.TempDir(), "raw.wav"), tone(24000, 24000, 440, 0.5), 24000, 1)

	path, err := lib.Add(AddRequest{Source: src, Speaker: "Emma"})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, audio.Peak(loadStored(t, path).Samples), 1e-3)
}
