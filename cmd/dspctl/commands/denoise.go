package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/denoise"
	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/resample"
	"github.com/cwbudde/algo-ipp/internal/audioio"
	"github.com/cwbudde/algo-ipp/internal/config"
)

var denoiseCmd = &cobra.Command{
	Use:   "denoise IN OUT",
	Short: "Reduce stationary noise in an audio file",
	Long: `Runs the adaptive noise filter over every channel of IN in blocks of 160
samples. Files above the highest supported rate are first resampled to it.`,
	Args: cobra.ExactArgs(2),
	RunE: runDenoise,
}

func init() {
	denoiseCmd.Flags().String("level", "", "none, low, medium, normal, high or auto")
	denoiseCmd.Flags().String("mode", "", "no-update, update or update-all")
	rootCmd.AddCommand(denoiseCmd)
}

func runDenoise(cmd *cobra.Command, args []string) error {
	dc := config.Denoise{
		Level: stringFlag(cmd, "level", cfg.Denoise.Level),
		Mode:  stringFlag(cmd, "mode", cfg.Denoise.Mode),
	}
	level, err := dc.ParsedLevel()
	if err != nil {
		return err
	}
	mode, err := dc.ParsedMode()
	if err != nil {
		return err
	}

	clip, err := audioio.Read(args[0])
	if err != nil {
		return err
	}
	s := newSession()
	if top := engine.NoiseRates[len(engine.NoiseRates)-1]; clip.Rate > top {
		logger.Info("resampling before noise reduction", "from", clip.Rate, "to", top)
		clip, err = resampleClip(s, clip, top, resample.QualityProfile(resample.QualityBalanced), 1)
		if err != nil {
			return err
		}
	}

	processed := 0
	for _, ch := range clip.Channels {
		p, err := denoise.New(s.eng, s.alloc, clip.Rate,
			denoise.WithLogger(logger), denoise.WithLevel(level), denoise.WithMode(mode))
		if err != nil {
			return err
		}
		n, err := p.ProcessAll(ch)
		p.Close()
		if err != nil {
			return err
		}
		processed += n
	}
	if err := audioio.WriteWAV(args[1], clip); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d Hz, level %s, mode %s, %d samples filtered\n", clip.Rate, level, mode, processed)
	return nil
}
