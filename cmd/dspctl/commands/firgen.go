package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/filter/fir"
	"github.com/cwbudde/algo-ipp/dsp/filter/firgen"
	"github.com/cwbudde/algo-ipp/internal/audioio"
	"github.com/cwbudde/algo-ipp/internal/config"
)

var firgenCmd = &cobra.Command{
	Use:   "firgen",
	Short: "Design a windowed-sinc FIR filter",
	Long: `Designs a lowpass, highpass, bandpass or bandstop filter with edges given
relative to the sampling rate and prints its magnitude response. With --apply
the filter runs over an audio file and the result is written to --out.`,
	Args: cobra.NoArgs,
	RunE: runFIRGen,
}

func init() {
	firgenCmd.Flags().String("shape", "lowpass", "lowpass, highpass, bandpass or bandstop")
	firgenCmd.Flags().Float64("low", 0.1, "lower (or only) edge relative to the sampling rate")
	firgenCmd.Flags().Float64("high", 0.2, "upper edge for bandpass and bandstop")
	firgenCmd.Flags().Int("taps", 0, "filter length")
	firgenCmd.Flags().String("window", "", "bartlett, blackman, hamming, hann or rect")
	firgenCmd.Flags().Bool("normalize", true, "scale to unity gain in the passband")
	firgenCmd.Flags().Int("points", 11, "number of response points between 0 and Nyquist")
	firgenCmd.Flags().Bool("coeffs", false, "print the coefficients")
	firgenCmd.Flags().String("apply", "", "audio file to filter")
	firgenCmd.Flags().String("out", "", "WAV file receiving the filtered audio")
	rootCmd.AddCommand(firgenCmd)
}

var shapes = map[string]firgen.Shape{
	firgen.Lowpass.String():  firgen.Lowpass,
	firgen.Highpass.String(): firgen.Highpass,
	firgen.Bandpass.String(): firgen.Bandpass,
	firgen.Bandstop.String(): firgen.Bandstop,
}

func runFIRGen(cmd *cobra.Command, args []string) error {
	shapeName, _ := cmd.Flags().GetString("shape")
	low, _ := cmd.Flags().GetFloat64("low")
	high, _ := cmd.Flags().GetFloat64("high")
	points, _ := cmd.Flags().GetInt("points")
	printCoeffs, _ := cmd.Flags().GetBool("coeffs")
	apply, _ := cmd.Flags().GetString("apply")
	outPath, _ := cmd.Flags().GetString("out")

	shape, ok := shapes[shapeName]
	if !ok {
		return fmt.Errorf("firgen: unknown shape %q", shapeName)
	}
	if (apply == "") != (outPath == "") {
		return errors.New("firgen: --apply and --out go together")
	}

	fc := config.FIR{
		Taps:      cfg.FIR.Taps,
		Window:    stringFlag(cmd, "window", cfg.FIR.Window),
		Normalize: cfg.FIR.Normalize,
	}
	if cmd.Flags().Changed("taps") {
		fc.Taps, _ = cmd.Flags().GetInt("taps")
	}
	if cmd.Flags().Changed("normalize") {
		fc.Normalize, _ = cmd.Flags().GetBool("normalize")
	}
	win, err := fc.ParsedWindow()
	if err != nil {
		return err
	}

	s := newSession()
	d := newDesigner(s, shape)
	defer d.Close()
	taps := make([]float64, fc.Taps)
	if err := d.Design(taps, firgen.Band(low, high), win, fc.Normalize); err != nil {
		return err
	}
	f := fir.New(taps)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s, %d taps, %s window, latency %d samples\n", shape, fc.Taps, win, f.Latency())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Frequency\tMagnitude [dB]\n")
	fmt.Fprintf(tw, "---------\t--------------\n")
	for i := range max(points, 2) {
		freq := 0.5 * float64(i) / float64(max(points, 2)-1)
		fmt.Fprintf(tw, "%.4f\t%.2f\n", freq, f.MagnitudeDB(freq, 1))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if printCoeffs {
		for i, c := range taps {
			fmt.Fprintf(w, "h[%d] = %.9f\n", i, c)
		}
	}

	if apply == "" {
		return nil
	}
	clip, err := audioio.Read(apply)
	if err != nil {
		return err
	}
	for _, ch := range clip.Channels {
		f.Reset()
		f.ProcessBlock32(ch)
	}
	return audioio.WriteWAV(outPath, clip)
}

func newDesigner(s *session, shape firgen.Shape) *firgen.Designer[float64] {
	opt := firgen.WithLogger(logger)
	switch shape {
	case firgen.Highpass:
		return firgen.NewHighpass[float64](s.eng, s.alloc, opt)
	case firgen.Bandpass:
		return firgen.NewBandpass[float64](s.eng, s.alloc, opt)
	case firgen.Bandstop:
		return firgen.NewBandstop[float64](s.eng, s.alloc, opt)
	default:
		return firgen.NewLowpass[float64](s.eng, s.alloc, opt)
	}
}
