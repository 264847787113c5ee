package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/engine/goengine"
	"github.com/cwbudde/algo-ipp/dsp/native"
	"github.com/cwbudde/algo-ipp/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded before every command runs.
	cfg    *config.Config
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "dspctl",
	Short: "Run the signal processing contexts on files",
	Long: `dspctl drives each processing context of the module end to end.

Defaults come from a YAML file passed with --config; command flags override
the file. Without --config the built-in defaults apply.

Examples:
  dspctl fft --size 2048 speech.wav
  dspctl resample --rate 48000 in.wav out.wav
  dspctl firgen --shape bandpass --low 0.1 --high 0.2 --taps 101
  dspctl denoise --level high noisy.wav clean.wav
  dspctl resize --width 640 --height 480 photo.png small.png
  dspctl lzss compress data.bin data.lz`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr())
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine and context events to stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file with processing defaults")
}

func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// session bundles the engine and allocator one command works with.
type session struct {
	eng   *goengine.Engine
	alloc native.Allocator
}

func newSession() *session {
	eng := goengine.New(goengine.WithLogger(logger))
	return &session{eng: eng, alloc: native.New(eng, native.WithLogger(logger))}
}

// stringFlag returns the flag value when it was set on the command line and
// fallback otherwise.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}
