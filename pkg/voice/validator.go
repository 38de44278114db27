package voice

import (
	"fmt"
	"log/slog"
	"time"

	"voicekit/pkg/audio"
)

// Severity grades a validation finding.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityInfo
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Finding is the outcome of one suitability check.
type Finding struct {
	Check    string
	Severity Severity
	Message  string
}

// Report is the result of inspecting a candidate voice file.
type Report struct {
	Path       string
	Seconds    float64
	SampleRate int
	Channels   int
	Findings   []Finding
}

// Warnings returns the findings graded as warnings.
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Inspect loads path at its native rate and channel layout and runs the
// duration and sample-rate checks. The checks are independent of each other.
func (l *Library) Inspect(path string) (*Report, error) {
	buf, err := audio.Load(path, audio.LoadOptions{})
	if err != nil {
		return nil, err
	}

	r := &Report{
		Path:       path,
		Seconds:    buf.Seconds(),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
	}

	lim := l.cfg.Validation
	switch {
	case buf.Seconds() < lim.MinDuration.Seconds():
		r.Findings = append(r.Findings, Finding{"duration", SeverityWarning,
			"Very short audio (< " + time.Duration(lim.MinDuration).String() + "). Consider longer sample."})
	case lim.MaxDuration > 0 && buf.Seconds() > lim.MaxDuration.Seconds():
		r.Findings = append(r.Findings, Finding{"duration", SeverityWarning,
			"Very long audio (> " + time.Duration(lim.MaxDuration).String() + "). Consider shorter sample."})
	default:
		r.Findings = append(r.Findings, Finding{"duration", SeverityOK, "Duration looks good"})
	}

	target := l.cfg.Voices.SampleRate
	if buf.SampleRate != target {
		r.Findings = append(r.Findings, Finding{"sample_rate", SeverityInfo,
			fmt.Sprintf("Will be resampled from %dHz to %dHz", buf.SampleRate, target)})
	} else {
		r.Findings = append(r.Findings, Finding{"sample_rate", SeverityOK, "Sample rate is optimal"})
	}

	return r, nil
}

// Validate inspects path and prints the report. It returns false when the
// file could not be loaded; the error is printed and logged, not returned.
func (l *Library) Validate(path string) bool {
	r, err := l.Inspect(path)
	if err != nil {
		slog.Warn("Voice validation failed", "path", path, "error", err)
		l.printf("  ❌ Error: %v\n", err)
		return false
	}

	l.printf("\nVoice file validation: %s\n", r.Path)
	l.printf("  Duration: %.2f seconds\n", r.Seconds)
	l.printf("  Sample rate: %d Hz\n", r.SampleRate)
	if r.Channels == 1 {
		l.printf("  Channels: Mono\n")
	} else {
		l.printf("  Channels: Stereo\n")
	}

	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityWarning:
			l.printf("  ⚠️  Warning: %s\n", f.Message)
		case SeverityInfo:
			l.printf("  ℹ️  %s\n", f.Message)
		default:
			l.printf("  ✅ %s\n", f.Message)
		}
	}
	return true
}
