package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"voicekit/pkg/audio"
	"voicekit/pkg/voice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testEnv is a scratch workspace with a config file pointing at a temp
// voices directory and console-only logging.
type testEnv struct {
	dir       string
	voicesDir string
	config    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		voicesDir: filepath.Join(dir, "voices"),
		config:    filepath.Join(dir, "voicekit.yaml"),
	}
	cfg := "voices:\n  dir: " + env.voicesDir + "\nlog:\n  path: \"\"\n  level: ERROR\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) tone(t *testing.T, name string, seconds float64, rate int) string {
	t.Helper()
	n := int(seconds * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	path := filepath.Join(e.dir, name)
	require.NoError(t, audio.WriteWAV(path, &audio.Buffer{Samples: samples, SampleRate: rate, Channels: 1}))
	return path
}

func TestInitConfig(t *testing.T) {
	env := newTestEnv(t)
	target := filepath.Join(env.dir, "nested", "generated.yaml")

	out, err := env.run(t, "init-config", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Config file generated: "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "voices:")
	assert.Contains(t, string(data), "# Options: DEBUG, INFO, WARN, ERROR")
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "list", "--output", "json")
	require.NoError(t, err)

	var infos []voice.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Empty(t, infos)
	assert.NotContains(t, out, "Voices directory not found")
}

func TestListTableMissingDir(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Voices directory not found: "+env.voicesDir)
}

func TestListUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestAddThenList(t *testing.T) {
	env := newTestEnv(t)
	src := env.tone(t, "emma.wav", 3, 44100)

	out, err := env.run(t, "add", src, "--speaker", "Emma", "--gender", "female")
	require.NoError(t, err)
	assert.Contains(t, out, "Processing audio: "+src)
	assert.FileExists(t, filepath.Join(env.voicesDir, "en-Emma_female.wav"))

	tests := []struct {
		name      string
		format    string
		unmarshal func([]byte, any) error
	}{
		{
			name:      "JSON",
			format:    "json",
			unmarshal: json.Unmarshal,
		},
		{
			name:      "YAML",
			format:    "yaml",
			unmarshal: yaml.Unmarshal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, "list", "--output", tt.format)
			require.NoError(t, err)

			var infos []voice.Info
			require.NoError(t, tt.unmarshal([]byte(out), &infos))
			require.Len(t, infos, 1)
			assert.Equal(t, "en-Emma_female.wav", infos[0].File)
			assert.Equal(t, "Emma", infos[0].Speaker)
			assert.False(t, infos[0].HasBGM)
		})
	}
}

func TestAddRequiresSpeaker(t *testing.T) {
	env := newTestEnv(t)
	src := env.tone(t, "anon.wav", 1, 24000)

	_, err := env.run(t, "add", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speaker")
}

func TestMix(t *testing.T) {
	env := newTestEnv(t)
	voicePath := env.tone(t, "voice.wav", 2, 24000)
	musicPath := env.tone(t, "music.wav", 0.5, 24000)

	_, err := env.run(t, "mix", voicePath, musicPath, "--speaker", "Emma", "--volume", "0.2")
	require.NoError(t, err)

	mixed := filepath.Join(env.voicesDir, "en-Emma_bgm.wav")
	require.FileExists(t, mixed)

	buf, err := audio.Load(mixed, audio.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 48000, buf.Frames())

	_, err = env.run(t, "mix", voicePath, musicPath, "--speaker", "Emma", "--volume", "1.5")
	assert.ErrorIs(t, err, voice.ErrInvalidVolume)
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)
	good := env.tone(t, "good.wav", 5, 24000)

	out, err := env.run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Voice file validation: "+good)

	out, err = env.run(t, "validate", good, filepath.Join(env.dir, "missing.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Contains(t, out, "❌ Error:")
}

func TestVerboseFlag(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "-v", "list")
	require.NoError(t, err)
}
