package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"voicekit/pkg/audio"
)

// ErrInvalidVolume is returned for a music volume outside [0, 1].
var ErrInvalidVolume = errors.New("voice: music volume must be in [0, 1]")

// MixRequest describes a voice to be layered over background music.
type MixRequest struct {
	VoicePath   string
	MusicPath   string
	Speaker     string
	Language    string // empty: configured default
	Dir         string // empty: configured default
	MusicVolume float64
}

// NewMixRequest returns a MixRequest carrying the configured music volume.
func (l *Library) NewMixRequest(voicePath, musicPath, speaker string) MixRequest {
	return MixRequest{
		VoicePath:   voicePath,
		MusicPath:   musicPath,
		Speaker:     speaker,
		MusicVolume: l.cfg.BGM.Volume,
	}
}

// MixBGM mixes music under a clean voice and saves the result as
// <dir>/<lang>-<speaker>_bgm.wav. The music is truncated or looped to the
// voice length. Returns the written path.
func (l *Library) MixBGM(req MixRequest) (string, error) {
	req.Language = orDefault(req.Language, l.cfg.Voices.Language)
	req.Dir = orDefault(req.Dir, l.cfg.Voices.Dir)

	if math.IsNaN(req.MusicVolume) || req.MusicVolume < 0 || req.MusicVolume > 1 {
		return "", fmt.Errorf("%w: got %v", ErrInvalidVolume, req.MusicVolume)
	}
	if err := checkNameParts(req.Language, req.Speaker, BGMTag); err != nil {
		return "", err
	}

	voice, err := audio.Load(req.VoicePath, l.storageOptions())
	if err != nil {
		return "", fmt.Errorf("failed to load voice: %w", err)
	}
	music, err := audio.Load(req.MusicPath, l.storageOptions())
	if err != nil {
		return "", fmt.Errorf("failed to load music: %w", err)
	}

	bed, err := audio.Tile(music.Samples, len(voice.Samples))
	if err != nil {
		return "", fmt.Errorf("failed to fit music to voice: %w", err)
	}
	slog.Debug("Voice: fitted music", "voice_frames", voice.Frames(), "music_frames", music.Frames())

	mixed := audio.Mix(voice.Samples, bed, req.MusicVolume)
	if err := audio.PeakNormalize(mixed, l.cfg.Import.PeakTarget); err != nil {
		return "", fmt.Errorf("failed to normalize mix: %w", err)
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create voices directory: %w", err)
	}
	target := filepath.Join(req.Dir, FileName(req.Language, req.Speaker, BGMTag, ".wav"))
	out := &audio.Buffer{Samples: mixed, SampleRate: voice.SampleRate, Channels: 1}
	if err := audio.WriteWAV(target, out); err != nil {
		return "", fmt.Errorf("failed to save voice: %w", err)
	}

	slog.Info("Voice with BGM created", "path", target, "speaker", req.Speaker, "volume", req.MusicVolume)
	l.printf("Voice with BGM created: %s\n", target)
	return target, nil
}
