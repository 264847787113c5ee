package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/vad"
	"github.com/cwbudde/algo-ipp/internal/audioio"
)

var vadCmd = &cobra.Command{
	Use:   "vad FILE",
	Short: "Report voice and tone activity in an audio file",
	Long: `Classifies the 16-bit mono mixdown of FILE in frames of 320 samples and
prints the time ranges detected as voice or tone.`,
	Args: cobra.ExactArgs(1),
	RunE: runVAD,
}

func init() {
	vadCmd.Flags().Bool("frames", false, "print one line per frame")
	rootCmd.AddCommand(vadCmd)
}

type segment struct {
	label      string
	start, end int
}

func runVAD(cmd *cobra.Command, args []string) error {
	perFrame, _ := cmd.Flags().GetBool("frames")
	clip, err := audioio.Read(args[0])
	if err != nil {
		return err
	}
	pcm := audioio.ToPCM16(clip.Mono())

	s := newSession()
	d, err := vad.New(s.eng, s.alloc, vad.WithLogger(logger))
	if err != nil {
		return err
	}
	defer d.Close()

	w := cmd.OutOrStdout()
	var voice, tone []segment
	extend := func(segs []segment, label string, on bool, frame int) []segment {
		if !on {
			return segs
		}
		if n := len(segs); n > 0 && segs[n-1].end == frame {
			segs[n-1].end = frame + 1
			return segs
		}
		return append(segs, segment{label: label, start: frame, end: frame + 1})
	}

	frames := len(pcm) / vad.FrameLen
	for i := range frames {
		r, err := d.Classify(pcm[i*vad.FrameLen : (i+1)*vad.FrameLen])
		if err != nil {
			return err
		}
		if perFrame {
			fmt.Fprintf(w, "frame %d voice=%t tone=%t\n", i, r.Voice, r.Tone)
		}
		voice = extend(voice, "voice", r.Voice, i)
		tone = extend(tone, "tone", r.Tone, i)
	}

	seconds := func(frame int) float64 {
		return float64(frame*vad.FrameLen) / float64(clip.Rate)
	}
	for _, seg := range append(voice, tone...) {
		fmt.Fprintf(w, "%s %.3f-%.3f s\n", seg.label, seconds(seg.start), seconds(seg.end))
	}
	fmt.Fprintf(w, "%d frames, %d voice segments, %d tone segments\n", frames, len(voice), len(tone))
	return nil
}
