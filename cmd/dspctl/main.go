// Command dspctl runs the signal processing contexts of this module end to
// end on audio files, images and byte streams.
//
// Usage:
//
//	dspctl [flags] <command> [args]
//
// Commands:
//
//	fft       - magnitude spectrum peaks of an audio file
//	resample  - sample rate conversion of an audio file
//	firgen    - windowed-sinc FIR design, optionally applied to a file
//	denoise   - adaptive noise reduction of an audio file
//	vad       - voice activity report of an audio file
//	resize    - PNG image resizing
//	lzss      - LZSS compression and expansion
//	window    - spectral properties of the FIR design windows
//	info      - engine name, version and CPU features
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-ipp/cmd/dspctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
