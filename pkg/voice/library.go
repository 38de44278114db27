package voice

import (
	"fmt"
	"io"

	"voicekit/pkg/audio"
	"voicekit/pkg/config"
)

// Library runs voice operations against the configured voice directory.
// Human-readable status lines go to the writer given to New.
type Library struct {
	cfg *config.Config
	out io.Writer
}

// New creates a Library. A nil out discards status output.
func New(cfg *config.Config, out io.Writer) *Library {
	if out == nil {
		out = io.Discard
	}
	return &Library{cfg: cfg, out: out}
}

// Dir returns the default voice directory.
func (l *Library) Dir() string {
	return l.cfg.Voices.Dir
}

func (l *Library) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}

// storageOptions converts loaded audio to the stored voice format.
func (l *Library) storageOptions() audio.LoadOptions {
	return audio.LoadOptions{SampleRate: l.cfg.Voices.SampleRate, Mono: true}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
