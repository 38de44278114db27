package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voicekit/pkg/config"
	"voicekit/pkg/logging"
	"voicekit/pkg/version"
	"voicekit/pkg/voice"
)

const defaultConfigPath = "configs/voicekit.yaml"

// app carries state shared by the subcommands of one invocation.
type app struct {
	out     io.Writer
	cfgFile string
	verbose bool

	cfg         *config.Config
	cleanupLogs func()
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "voicekit",
		Short: "Manage reference voices for voice cloning",
		Long: `voicekit manages a directory of reference voice samples.

Voice files are named <language>-<speaker>_<gender|bgm>.wav and stored as
24 kHz mono WAV. The speaker name used in scripts is parsed back from the
file name.

Examples:
  voicekit add recordings/emma.mp3 --speaker Emma --gender female
  voicekit mix demo/voices/en-Emma_female.wav music/lofi.ogg --speaker Emma
  voicekit list --output json
  voicekit validate candidate.wav`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", defaultConfigPath, "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.addCmd(),
		a.mixCmd(),
		a.listCmd(),
		a.validateCmd(),
		a.initConfigCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.verbose {
		cfg.Log.Level = "DEBUG"
	}

	cleanup, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.cfg = cfg
	a.cleanupLogs = cleanup

	slog.Debug("voicekit started", "version", version.Version, "command", cmd.Name(), "config", a.cfgFile, "voices", cfg.Voices.Dir)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if a.cleanupLogs != nil {
		a.cleanupLogs()
		a.cleanupLogs = nil
	}
}

func (a *app) library(out io.Writer) *voice.Library {
	return voice.New(a.cfg, out)
}

func (a *app) addCmd() *cobra.Command {
	var req voice.AddRequest

	cmd := &cobra.Command{
		Use:   "add <source>",
		Short: "Import a recording as a voice",
		Long: `Import a recording as a voice.

The recording is downmixed to mono, resampled to 24 kHz, trimmed of leading
and trailing silence and peak-normalized before being saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Source = args[0]
			_, err := a.library(a.out).Add(req)
			return err
		},
	}

	cmd.Flags().StringVarP(&req.Speaker, "speaker", "s", "", "speaker name used in scripts (required)")
	cmd.Flags().StringVarP(&req.Language, "lang", "l", "", "language code (default from config)")
	cmd.Flags().StringVarP(&req.Gender, "gender", "g", "", "gender tag (default from config)")
	cmd.Flags().StringVarP(&req.Dir, "dir", "d", "", "voices directory (default from config)")
	_ = cmd.MarkFlagRequired("speaker")
	return cmd
}

func (a *app) mixCmd() *cobra.Command {
	var (
		speaker  string
		language string
		dir      string
		volume   float64
	)

	cmd := &cobra.Command{
		Use:   "mix <voice> <music>",
		Short: "Layer background music under a voice",
		Long: `Layer background music under a clean voice recording.

The music is truncated or looped to the voice length, scaled by --volume and
added to the voice. The result is saved as <lang>-<speaker>_bgm.wav.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := a.library(a.out)
			req := lib.NewMixRequest(args[0], args[1], speaker)
			req.Language = language
			req.Dir = dir
			if cmd.Flags().Changed("volume") {
				req.MusicVolume = volume
			}
			_, err := lib.MixBGM(req)
			return err
		},
	}

	cmd.Flags().StringVarP(&speaker, "speaker", "s", "", "speaker name used in scripts (required)")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "language code (default from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "voices directory (default from config)")
	cmd.Flags().Float64Var(&volume, "volume", 0.1, "music volume, 0.0 to 1.0 (default from config)")
	_ = cmd.MarkFlagRequired("speaker")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		dir    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List voices in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			tableOut := a.out
			if f != formatTable {
				tableOut = io.Discard
			}
			infos, err := a.library(tableOut).List(dir)
			if err != nil {
				return err
			}
			if f == formatTable {
				return nil
			}
			return writeOutput(a.out, infos, f)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "voices directory (default from config)")
	cmd.Flags().StringVarP(&format, "output", "o", string(formatTable), "output format: table, json, yaml")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check candidate files for use as voices",
		Long: `Check candidate files for use as voices.

Reports duration, sample rate and channel layout, warns when the duration is
outside the recommended window and notes when the file will be resampled.
Exits non-zero if any file cannot be read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := a.library(a.out)
			failed := 0
			for _, path := range args {
				if !lib.Validate(path) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be validated", failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		// No config is loaded for this command.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.GenerateDefault(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(a.out, "Config file generated: %s\n", path)
			return nil
		},
	}
}
