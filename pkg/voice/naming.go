// Package voice manages a directory of reference voice samples: importing,
// background-music mixing, listing and validation.
//
// Voice files follow the convention <language>-<speaker>_<tag>.<ext>, where
// tag is a gender ("female", "male", "neutral") or "bgm" for samples mixed
// with background music.
package voice

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// BGMTag marks voice files mixed with background music.
const BGMTag = "bgm"

// ErrInvalidName is returned for name parts that cannot form a file name.
var ErrInvalidName = errors.New("voice: invalid name")

// AudioExtensions lists the extensions recognized as voice files.
var AudioExtensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".aac"}

// Name is the best-effort parse of a voice file name.
type Name struct {
	Language string
	Speaker  string
	Tag      string
}

// FileName builds a conventioned file name. ext includes the leading dot.
func FileName(language, speaker, tag, ext string) string {
	return fmt.Sprintf("%s-%s_%s%s", language, speaker, tag, ext)
}

// IsAudioFile reports whether name carries a recognized audio extension,
// ignoring case.
func IsAudioFile(name string) bool {
	lower := strings.ToLower(name)
	return slices.ContainsFunc(AudioExtensions, func(ext string) bool {
		return strings.HasSuffix(lower, ext)
	})
}

// SpeakerName extracts the speaker from a file name: the part before the
// first '_', then the part after the last '-'. Names containing extra
// separators are split the same way and may come out truncated.
func SpeakerName(name string) string {
	return ParseName(name).Speaker
}

// HasBGM reports whether the base name mentions "bgm" in any case.
func HasBGM(name string) bool {
	return strings.Contains(strings.ToLower(stem(name)), BGMTag)
}

// ParseName splits a file name into its convention parts.
func ParseName(name string) Name {
	base := stem(name)

	var n Name
	head := base
	if i := strings.Index(base, "_"); i >= 0 {
		head = base[:i]
		n.Tag = base[i+1:]
	}
	n.Speaker = head
	if i := strings.LastIndex(head, "-"); i >= 0 {
		n.Speaker = head[i+1:]
		n.Language = head[:strings.Index(head, "-")]
	}
	return n
}

// stem drops the extension. Leading dots belong to the name, so ".wav" has
// no extension.
func stem(name string) string {
	name = filepath.Base(name)
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	return name[:len(name)-len(ext)]
}

// checkPart rejects name parts that are empty or would escape the voice
// directory.
func checkPart(kind, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return fmt.Errorf("%w: empty %s", ErrInvalidName, kind)
	case strings.ContainsAny(value, `/\`), value == ".", value == "..":
		return fmt.Errorf("%w: %s %q contains a path separator", ErrInvalidName, kind, value)
	}
	return nil
}
