package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ipp/dsp/lzss"
)

var lzssCmd = &cobra.Command{
	Use:   "lzss",
	Short: "Compress and expand files with LZSS",
}

var lzssCompressCmd = &cobra.Command{
	Use:   "compress IN OUT",
	Short: "Compress IN into a framed LZSS stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		frameSize := cfg.LZSS.FrameSize
		if cmd.Flags().Changed("frame-size") {
			frameSize, _ = cmd.Flags().GetInt("frame-size")
		}
		return runLZSS(cmd, args[0], args[1], func(c *lzss.Codec, data []byte) ([]byte, error) {
			return c.EncodeFrames(nil, data, frameSize)
		})
	},
}

var lzssExpandCmd = &cobra.Command{
	Use:   "expand IN OUT",
	Short: "Expand a framed LZSS stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLZSS(cmd, args[0], args[1], func(c *lzss.Codec, data []byte) ([]byte, error) {
			return c.DecodeFrames(nil, data)
		})
	},
}

func init() {
	lzssCompressCmd.Flags().Int("frame-size", lzss.DefaultFrameSize, "raw bytes per frame")
	lzssCmd.AddCommand(lzssCompressCmd, lzssExpandCmd)
	rootCmd.AddCommand(lzssCmd)
}

func runLZSS(cmd *cobra.Command, inPath, outPath string, fn func(*lzss.Codec, []byte) ([]byte, error)) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	s := newSession()
	c, err := lzss.New(s.eng, s.alloc, lzss.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := fn(c, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d bytes\n", len(data), len(out))
	return nil
}
