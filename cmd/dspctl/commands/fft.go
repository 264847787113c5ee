package commands

import (
	"fmt"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/transform"
	"github.com/cwbudde/algo-ipp/dsp/window"
	"github.com/cwbudde/algo-ipp/internal/audioio"
	"github.com/cwbudde/algo-ipp/internal/config"
)

var fftCmd = &cobra.Command{
	Use:   "fft FILE",
	Short: "Print the strongest spectral peaks of an audio file",
	Long: `Transforms one Hann windowed frame of the mono mixdown of FILE and prints
the strongest magnitude peaks. Sizes that are not a power of two use the DFT.`,
	Args: cobra.ExactArgs(1),
	RunE: runFFT,
}

func init() {
	fftCmd.Flags().Int("size", 1024, "transform size")
	fftCmd.Flags().Int("offset", 0, "first sample of the analyzed frame")
	fftCmd.Flags().Int("peaks", 5, "number of peaks to print")
	fftCmd.Flags().String("flag", "", "normalization (div-fwd-by-n, div-inv-by-n, div-by-sqrt-n, no-div)")
	fftCmd.Flags().String("hint", "", "algorithm hint (none, fast, accurate)")
	rootCmd.AddCommand(fftCmd)
}

type peak struct {
	bin int
	mag float64
}

func runFFT(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt("size")
	offset, _ := cmd.Flags().GetInt("offset")
	count, _ := cmd.Flags().GetInt("peaks")
	if size < 2 || offset < 0 || count < 1 {
		return fmt.Errorf("fft: invalid size %d, offset %d or peak count %d", size, offset, count)
	}

	opts := config.FFT{
		Flag: stringFlag(cmd, "flag", cfg.FFT.Flag),
		Hint: stringFlag(cmd, "hint", cfg.FFT.Hint),
	}
	flag, err := opts.ParsedFlag()
	if err != nil {
		return err
	}
	hint, err := opts.ParsedHint()
	if err != nil {
		return err
	}

	clip, err := audioio.Read(args[0])
	if err != nil {
		return err
	}
	frame := make([]float64, size)
	if mono := clip.Mono(); offset < len(mono) {
		for i, v := range mono[offset:min(offset+size, len(mono))] {
			frame[i] = float64(v)
		}
	}
	if err := window.ApplyCoefficientsInPlace(frame, window.Generate(window.TypeHann, size)); err != nil {
		return err
	}

	kind := transform.KindDFT
	if transform.IsPowerOfTwo(size) {
		kind = transform.KindFFT
	}
	s := newSession()
	ctx := transform.New(s.eng, s.alloc, kind, transform.WithLogger(logger))
	defer ctx.Close()
	if err := ctx.Initialize(size, flag, hint); err != nil {
		return err
	}

	src := make([]complex64, size)
	for i, v := range frame {
		src[i] = complex(float32(v), 0)
	}
	dst := make([]complex64, size)
	if err := ctx.Forward(dst, src); err != nil {
		return err
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = float64(real(dst[i]))
		im[i] = float64(imag(dst[i]))
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)
	ref := vecmath.MaxAbs(mag)

	peaks := findPeaks(mag, count)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Bin\tFrequency [Hz]\tLevel [dB]\n")
	fmt.Fprintf(tw, "---\t--------------\t----------\n")
	for _, p := range peaks {
		db := math.Inf(-1)
		if ref > 0 && p.mag > 0 {
			db = 20 * math.Log10(p.mag/ref)
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%.2f\n", p.bin, float64(p.bin)*float64(clip.Rate)/float64(size), db)
	}
	return tw.Flush()
}

// findPeaks returns up to n local maxima of mag, strongest first.
func findPeaks(mag []float64, n int) []peak {
	var peaks []peak
	for i, v := range mag {
		if v <= 0 {
			continue
		}
		if (i > 0 && mag[i-1] > v) || (i+1 < len(mag) && mag[i+1] >= v) {
			continue
		}
		peaks = append(peaks, peak{bin: i, mag: v})
	}
	sort.Slice(peaks, func(a, b int) bool { return peaks[a].mag > peaks[b].mag })
	return peaks[:min(n, len(peaks))]
}
