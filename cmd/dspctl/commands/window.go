package commands

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/engine"
	"github.com/cwbudde/algo-ipp/dsp/transform"
	"github.com/cwbudde/algo-ipp/dsp/window"
)

var windowCmd = &cobra.Command{
	Use:   "window [name ...]",
	Short: "Print spectral properties of the FIR design windows",
	Long: `Prints coherent gain, equivalent noise bandwidth and highest sidelobe of
each window the FIR designers can apply. Without arguments every window is
listed.`,
	RunE: runWindow,
}

func init() {
	windowCmd.Flags().Int("size", 64, "window length in samples")
	windowCmd.Flags().Float64("beta", 8.6, "Kaiser beta")
	rootCmd.AddCommand(windowCmd)
}

type windowEntry struct {
	name string
	typ  window.Type
}

var windowRegistry = []windowEntry{
	{engine.WinBartlett.String(), window.TypeBartlett},
	{engine.WinBlackman.String(), window.TypeBlackman},
	{engine.WinHamming.String(), window.TypeHamming},
	{engine.WinHann.String(), window.TypeHann},
	{engine.WinRect.String(), window.TypeRectangular},
	{"kaiser", window.TypeKaiser},
}

// sidelobeOversampling is the zero padding factor of the sidelobe search.
const sidelobeOversampling = 16

func runWindow(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt("size")
	beta, _ := cmd.Flags().GetFloat64("beta")
	if size < 2 {
		return fmt.Errorf("window: size must be at least 2, got %d", size)
	}

	entries := windowRegistry
	if len(args) > 0 {
		entries = nil
		for _, name := range args {
			name = strings.ToLower(strings.TrimSpace(name))
			found := false
			for _, e := range windowRegistry {
				if e.name == name {
					entries = append(entries, e)
					found = true
				}
			}
			if !found {
				return fmt.Errorf("window: unknown window %q", name)
			}
		}
	}

	n := 1
	for n < size*sidelobeOversampling {
		n <<= 1
	}
	s := newSession()
	ctx := transform.New(s.eng, s.alloc, transform.KindFFT, transform.WithLogger(logger))
	defer ctx.Close()
	if err := ctx.Initialize(n, engine.NoDivByAny, engine.HintAccurate); err != nil {
		return err
	}
	buf := make([]complex64, n)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tSidelobe [dB]\n")
	fmt.Fprintf(tw, "------\t----\t-------------\t-----------\t-------------\n")
	for _, e := range entries {
		coeffs := window.Generate(e.typ, size, window.WithBeta(beta))
		enbw, err := window.EquivalentNoiseBandwidth(coeffs)
		if err != nil {
			return fmt.Errorf("window %s: %w", e.name, err)
		}

		clear(buf)
		for i, c := range coeffs {
			buf[i] = complex(float32(c), 0)
		}
		if err := ctx.ForwardInPlace(buf); err != nil {
			return err
		}
		sidelobe := highestSidelobe(buf[:n/2+1])

		label := e.name
		if e.typ == window.TypeKaiser {
			label = fmt.Sprintf("%s (beta=%.2f)", e.name, beta)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.2f\n",
			label, size, vecmath.Sum(coeffs)/float64(size), enbw, sidelobe)
	}
	return tw.Flush()
}

// highestSidelobe returns the level of the largest spectral peak past the
// first minimum of the main lobe, relative to the main lobe in dB.
func highestSidelobe(spectrum []complex64) float64 {
	mag := make([]float64, len(spectrum))
	for i, v := range spectrum {
		mag[i] = cmplx.Abs(complex128(v))
	}
	if mag[0] == 0 {
		return math.Inf(-1)
	}
	i := 1
	for i < len(mag) && mag[i] <= mag[i-1] {
		i++
	}
	if i >= len(mag) {
		return math.Inf(-1)
	}
	peak := vecmath.MaxAbs(mag[i:])
	if peak == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(peak/mag[0])
}
