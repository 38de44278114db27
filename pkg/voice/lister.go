package voice

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Info describes one voice file found in the voice directory.
type Info struct {
	File     string `json:"file" yaml:"file"`
	Speaker  string `json:"speaker_name" yaml:"speaker_name"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	HasBGM   bool   `json:"has_bgm" yaml:"has_bgm"`
	SizeKB   int64  `json:"size_kb" yaml:"size_kb"`
}

// List scans dir (the configured directory when empty) for voice files and
// prints a table of them. A missing directory yields an empty result.
func (l *Library) List(dir string) ([]Info, error) {
	dir = orDefault(dir, l.cfg.Voices.Dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Voices directory not found", "dir", dir)
			l.printf("Voices directory not found: %s\n", dir)
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read voices directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	infos := []Info{}
	for _, e := range entries {
		if e.IsDir() || !IsAudioFile(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			slog.Warn("Voice: skipping unreadable entry", "file", filepath.Join(dir, e.Name()), "error", err)
			continue
		}

		name := ParseName(e.Name())
		infos = append(infos, Info{
			File:     e.Name(),
			Speaker:  name.Speaker,
			Language: name.Language,
			Tag:      name.Tag,
			HasBGM:   HasBGM(e.Name()),
			SizeKB:   fi.Size() / 1024,
		})
	}

	l.printTable(infos)
	return infos, nil
}

func (l *Library) printTable(infos []Info) {
	r := lipgloss.NewRenderer(l.out)
	title := r.NewStyle().Bold(true)
	rule := r.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	badge := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))

	l.printf("\n%s\n", title.Render(fmt.Sprintf("Available voices (%d total):", len(infos))))
	l.printf("%s\n", rule.Render(strings.Repeat("-", 50)))

	for _, info := range infos {
		indicator := ""
		if info.HasBGM {
			indicator = " " + badge.Render("[BGM]")
		}
		l.printf("  %-15s | %-25s | %6d KB%s\n", info.Speaker, info.File, info.SizeKB, indicator)
	}
}
