package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvVoicesDir = "VOICEKIT_VOICES_DIR"
	EnvLogLevel  = "VOICEKIT_LOG_LEVEL"
	EnvLogPath   = "VOICEKIT_LOG_PATH"
)

// Config holds the application configuration.
type Config struct {
	Voices     VoicesConfig     `yaml:"voices"`
	Import     ImportConfig     `yaml:"import"`
	BGM        BGMConfig        `yaml:"bgm"`
	Validation ValidationConfig `yaml:"validate"`
	Log        LogConfig        `yaml:"log"`
}

// VoicesConfig holds the voice library layout and naming defaults.
type VoicesConfig struct {
	Dir        string `yaml:"dir"`
	Language   string `yaml:"language"`    // default language code, e.g. "en"
	Gender     string `yaml:"gender"`      // default gender tag, e.g. "neutral"
	SampleRate int    `yaml:"sample_rate"` // target rate for stored voices (Hz)
}

// ImportConfig holds the preprocessing settings applied when adding a voice.
type ImportConfig struct {
	TrimTopDB  float64 `yaml:"trim_top_db"` // silence threshold below peak (dB)
	PeakTarget float64 `yaml:"peak_target"` // peak amplitude after normalization
	HighPassHz float64 `yaml:"highpass_hz"` // 0 disables
	LowPassHz  float64 `yaml:"lowpass_hz"`  // 0 disables
}

// BGMConfig holds settings for background music mixing.
type BGMConfig struct {
	Volume float64 `yaml:"volume"` // music gain, 0.0 to 1.0
}

// ValidationConfig holds the duration window recommended for voice samples.
type ValidationConfig struct {
	MinDuration Duration `yaml:"min_duration"`
	MaxDuration Duration `yaml:"max_duration"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"` // empty logs to console only
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Voices: VoicesConfig{
			Dir:        "demo/voices",
			Language:   "en",
			Gender:     "neutral",
			SampleRate: 24000,
		},
		Import: ImportConfig{
			TrimTopDB:  20,
			PeakTarget: 0.95,
		},
		BGM: BGMConfig{
			Volume: 0.1,
		},
		Validation: ValidationConfig{
			MinDuration: Duration(2 * time.Second),
			MaxDuration: Duration(30 * time.Second),
		},
		Log: LogConfig{
			Path:  "./logs/voicekit.log",
			Level: "INFO",
		},
	}
}

// Load loads the configuration from the given path.
// A missing file is not an error: defaults are used. Values found in the file
// are merged over the defaults, then environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// defaults only
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if dir := os.Getenv(EnvVoicesDir); dir != "" {
		cfg.Voices.Dir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if p, ok := os.LookupEnv(EnvLogPath); ok {
		cfg.Log.Path = p
	}
}

var languageCode = regexp.MustCompile(`^[A-Za-z]{2,3}([_-][A-Za-z0-9]{2,8})?$`)

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Voices.Dir == "" {
		return fmt.Errorf("voices.dir must not be empty")
	}
	if c.Voices.SampleRate <= 0 {
		return fmt.Errorf("invalid voices.sample_rate %d: must be positive", c.Voices.SampleRate)
	}
	if !languageCode.MatchString(c.Voices.Language) {
		return fmt.Errorf("invalid voices.language '%s': must be a language code such as 'en' or 'zh'", c.Voices.Language)
	}
	if c.Import.TrimTopDB <= 0 {
		return fmt.Errorf("invalid import.trim_top_db %.2f: must be positive", c.Import.TrimTopDB)
	}
	if c.Import.PeakTarget <= 0 || c.Import.PeakTarget > 1 {
		return fmt.Errorf("invalid import.peak_target %.2f: must be in (0, 1]", c.Import.PeakTarget)
	}
	if c.Import.HighPassHz < 0 || c.Import.LowPassHz < 0 {
		return fmt.Errorf("import filter cutoffs must not be negative")
	}
	nyquist := float64(c.Voices.SampleRate) / 2
	if c.Import.HighPassHz >= nyquist || c.Import.LowPassHz >= nyquist {
		return fmt.Errorf("import filter cutoffs must be below %.0f Hz", nyquist)
	}
	if c.BGM.Volume < 0 || c.BGM.Volume > 1 {
		return fmt.Errorf("invalid bgm.volume %.2f: must be in [0, 1]", c.BGM.Volume)
	}
	if c.Validation.MaxDuration > 0 && c.Validation.MinDuration > c.Validation.MaxDuration {
		return fmt.Errorf("validate.min_duration (%s) exceeds validate.max_duration (%s)",
			time.Duration(c.Validation.MinDuration), time.Duration(c.Validation.MaxDuration))
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# voicekit Configuration
# ---------------------
# Voice files are named <language>-<speaker>_<gender|bgm>.wav
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for fields with non-obvious ranges.
	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	reVolume := regexp.MustCompile(`(?m)^(\s+)volume:`)
	data = reVolume.ReplaceAll(data, []byte("${1}# Music gain relative to the voice, 0.0 to 1.0\n${1}volume:"))

	reFilter := regexp.MustCompile(`(?m)^(\s+)highpass_hz:`)
	data = reFilter.ReplaceAll(data, []byte("${1}# Band filter cutoffs in Hz, 0 disables\n${1}highpass_hz:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
