package voice

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"voicekit/pkg/audio"
)

// AddRequest describes a recording to import. Empty fields take the
// configured defaults.
type AddRequest struct {
	Source   string
	Speaker  string
	Language string
	Gender   string
	Dir      string
}

// Add imports a recording as a voice: it is downmixed, resampled to the
// stored rate, trimmed, peak-normalized and written as
// <dir>/<lang>-<speaker>_<gender>.wav. Returns the written path.
func (l *Library) Add(req AddRequest) (string, error) {
	req.Language = orDefault(req.Language, l.cfg.Voices.Language)
	req.Gender = orDefault(req.Gender, l.cfg.Voices.Gender)
	req.Dir = orDefault(req.Dir, l.cfg.Voices.Dir)

	if err := checkNameParts(req.Language, req.Speaker, req.Gender); err != nil {
		return "", err
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create voices directory: %w", err)
	}
	target := filepath.Join(req.Dir, FileName(req.Language, req.Speaker, req.Gender, ".wav"))

	l.printf("Processing audio: %s\n", req.Source)
	buf, err := audio.Load(req.Source, l.storageOptions())
	if err != nil {
		return "", fmt.Errorf("failed to load source audio: %w", err)
	}

	imp := l.cfg.Import
	audio.BandFilter(buf.Samples, float64(buf.SampleRate), imp.HighPassHz, imp.LowPassHz)

	loaded := buf.Frames()
	buf.Samples = audio.Trim(buf.Samples, imp.TrimTopDB)
	slog.Debug("Voice: trimmed silence", "source", req.Source, "before", loaded, "after", buf.Frames())

	if err := audio.PeakNormalize(buf.Samples, imp.PeakTarget); err != nil {
		return "", fmt.Errorf("failed to normalize %s: %w", req.Source, err)
	}

	if err := audio.WriteWAV(target, buf); err != nil {
		return "", fmt.Errorf("failed to save voice: %w", err)
	}

	slog.Info("Voice added", "path", target, "speaker", req.Speaker, "duration", buf.Duration())
	l.printf("Voice added: %s\n", target)
	l.printf("Speaker name for scripts: '%s'\n", req.Speaker)
	return target, nil
}

// checkNameParts validates the parts of a conventioned name and warns when
// the speaker would not survive a round trip through SpeakerName.
func checkNameParts(language, speaker, tag string) error {
	if err := checkPart("language", language); err != nil {
		return err
	}
	if err := checkPart("speaker", speaker); err != nil {
		return err
	}
	if err := checkPart("tag", tag); err != nil {
		return err
	}
	if parsed := SpeakerName(FileName(language, speaker, tag, ".wav")); parsed != speaker {
		slog.Warn("Voice: speaker name will not round-trip through the file name",
			"speaker", speaker, "parsed", parsed)
	}
	return nil
}
