package commands

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/imaging"
	"github.com/cwbudde/algo-ipp/internal/config"
)

var resizeCmd = &cobra.Command{
	Use:   "resize IN OUT",
	Short: "Resize an image",
	Long: `Decodes IN (PNG, or any format registered with image), resizes it as RGBA
and writes OUT as PNG. A zero width or height keeps the aspect ratio.`,
	Args: cobra.ExactArgs(2),
	RunE: runResize,
}

func init() {
	resizeCmd.Flags().Int("width", 0, "output width in pixels")
	resizeCmd.Flags().Int("height", 0, "output height in pixels")
	resizeCmd.Flags().String("interp", "", "nearest, linear or lanczos")
	rootCmd.AddCommand(resizeCmd)
}

func runResize(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	interp, err := config.Resize{Interpolation: stringFlag(cmd, "interp", cfg.Resize.Interpolation)}.ParsedInterpolation()
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	img, _, err := image.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	src := imaging.FromImage(img)
	width, height, err = targetSize(src.Width, src.Height, width, height)
	if err != nil {
		return err
	}
	dst := imaging.NewImage(width, height, 4)

	s := newSession()
	if err := imaging.Resize(s.eng, s.alloc, src, dst, interp, imaging.WithLogger(logger)); err != nil {
		return err
	}
	rgba, _ := dst.RGBA()

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := png.Encode(out, rgba); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", args[1], err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%dx%d -> %dx%d (%s)\n", src.Width, src.Height, width, height, interp)
	return nil
}

// targetSize fills in a missing dimension from the source aspect ratio.
func targetSize(srcW, srcH, w, h int) (int, int, error) {
	switch {
	case srcW < 1 || srcH < 1:
		return 0, 0, fmt.Errorf("resize: empty source image %dx%d", srcW, srcH)
	case w < 0 || h < 0 || (w == 0 && h == 0):
		return 0, 0, fmt.Errorf("resize: need a positive --width or --height, got %dx%d", w, h)
	case w == 0:
		w = max(1, (srcW*h+srcH/2)/srcH)
	case h == 0:
		h = max(1, (srcH*w+srcW/2)/srcW)
	}
	return w, h, nil
}
