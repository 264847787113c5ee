package commands

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/spf13/cobra"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/resample"
	"github.com/cwbudde/algo-ipp/internal/audioio"
)

var resampleCmd = &cobra.Command{
	Use:   "resample IN OUT",
	Short: "Convert the sample rate of an audio file",
	Long: `Resamples every channel of IN with the polyphase context and writes a
16-bit WAV file to OUT. With --compare the mono mixdown is also converted by
an independent high quality resampler and the difference is reported.`,
	Args: cobra.ExactArgs(2),
	RunE: runResample,
}

func init() {
	resampleCmd.Flags().Int("rate", 0, "output sample rate in Hz (required)")
	resampleCmd.Flags().String("quality", "", "filter preset (fast, balanced, best)")
	resampleCmd.Flags().Int("history", 0, "filter half length, overrides the preset")
	resampleCmd.Flags().Float32("rolloff", 0, "passband edge relative to Nyquist, overrides the preset")
	resampleCmd.Flags().Float32("alpha", 0, "Kaiser window alpha, overrides the preset")
	resampleCmd.Flags().Float32("norm", 0, "output gain")
	resampleCmd.Flags().Bool("compare", false, "compare against an independent resampler")
	_ = resampleCmd.MarkFlagRequired("rate")
	rootCmd.AddCommand(resampleCmd)
}

func runResample(cmd *cobra.Command, args []string) error {
	rate, _ := cmd.Flags().GetInt("rate")
	compare, _ := cmd.Flags().GetBool("compare")

	rc := cfg.Resample
	rc.Quality = stringFlag(cmd, "quality", rc.Quality)
	if cmd.Flags().Changed("history") {
		rc.History, _ = cmd.Flags().GetInt("history")
	}
	if cmd.Flags().Changed("rolloff") {
		rc.Rolloff, _ = cmd.Flags().GetFloat32("rolloff")
	}
	if cmd.Flags().Changed("alpha") {
		rc.Alpha, _ = cmd.Flags().GetFloat32("alpha")
	}
	if cmd.Flags().Changed("norm") {
		rc.Norm, _ = cmd.Flags().GetFloat32("norm")
	}
	profile, err := rc.Profile()
	if err != nil {
		return err
	}

	clip, err := audioio.Read(args[0])
	if err != nil {
		return err
	}
	out, err := resampleClip(newSession(), clip, rate, profile, rc.Norm)
	if err != nil {
		return err
	}
	if err := audioio.WriteWAV(args[1], out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d Hz -> %d Hz, %d -> %d frames, %d channels\n",
		clip.Rate, out.Rate, clip.Len(), out.Len(), len(out.Channels))

	if compare {
		return compareResamplers(cmd, clip, out, rate)
	}
	return nil
}

// resampleClip converts every channel of clip to rate with one context.
func resampleClip(s *session, clip *audioio.Clip, rate int, p resample.Profile, norm float32) (*audioio.Clip, error) {
	ctx := resample.New(s.eng, s.alloc, resample.WithLogger(logger))
	defer ctx.Close()
	if err := ctx.Initialize(clip.Rate, rate, p.History, p.Rolloff, p.Alpha, engine.HintAccurate); err != nil {
		return nil, err
	}

	want := int(math.Ceil(float64(clip.Len()) * float64(rate) / float64(clip.Rate)))
	lead, tail := p.History, ctx.Geometry().Len
	out := &audioio.Clip{Rate: rate, Channels: make([][]float32, len(clip.Channels))}
	src := make([]float32, lead+clip.Len()+tail)
	for ch, x := range clip.Channels {
		clear(src)
		copy(src[lead:], x)
		dst := make([]float32, ctx.MaxOutput(len(src)))
		n, err := ctx.Resample(dst, src, 0, len(src), norm)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out.Channels[ch] = dst[:min(n, want)]
	}
	return out, nil
}

func compareResamplers(cmd *cobra.Command, in, out *audioio.Clip, rate int) error {
	ref, err := resampling.New(&resampling.Config{
		InputRate:  float64(in.Rate),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return fmt.Errorf("reference resampler: %w", err)
	}
	mono := in.Mono()
	x := make([]float64, len(mono))
	for i, v := range mono {
		x[i] = float64(v)
	}
	want, err := ref.Process(x)
	if err != nil {
		return fmt.Errorf("reference resampler: %w", err)
	}

	gotMono := out.Mono()
	got := make([]float64, len(gotMono))
	for i, v := range gotMono {
		got[i] = float64(v)
	}
	lag, diff := alignedDifference(got, want, 64)
	fmt.Fprintf(cmd.OutOrStdout(), "reference: %d frames, lag %d, rms %.6f, rms difference %.6f\n",
		len(want), lag, rms(want), diff)
	return nil
}

// alignedDifference finds the lag of b against a within maxLag that gives the
// smallest RMS difference over the overlap and returns both.
func alignedDifference(a, b []float64, maxLag int) (int, float64) {
	bestLag, best := 0, math.Inf(1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		as, bs := a, b
		if lag > 0 {
			if lag >= len(bs) {
				continue
			}
			bs = bs[lag:]
		} else if lag < 0 {
			if -lag >= len(as) {
				continue
			}
			as = as[-lag:]
		}
		n := min(len(as), len(bs))
		if n == 0 {
			continue
		}
		d := make([]float64, n)
		vecmath.ScaleBlock(d, as[:n], -1)
		vecmath.AddBlockInPlace(d, bs[:n])
		if r := rms(d); r < best {
			bestLag, best = lag, r
		}
	}
	return bestLag, best
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(vecmath.DotProduct(x, x) / float64(len(x)))
}
