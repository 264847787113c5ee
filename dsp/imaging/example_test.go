package imaging_test

import (
	"fmt"

	"github.com/cwbudde/algo-ipp/dsp/engine/goengine"
	"github.com/cwbudde/algo-ipp/dsp/imaging"
	"github.com/cwbudde/algo-ipp/dsp/native"
)

func ExampleResize() {
	eng := goengine.New()
	src := imaging.NewImage(2, 2, 1)
	copy(src.Pix, []byte{10, 20, 30, 40})
	dst := imaging.NewImage(4, 4, 1)

	if err := imaging.Resize(eng, native.New(eng), src, dst, imaging.Nearest); err != nil {
		fmt.Println(err)
		return
	}
	for y := range dst.Height {
		fmt.Println(dst.Pix[y*dst.Stride : (y+1)*dst.Stride])
	}
	// Output:
	// [10 10 20 20]
	// [10 10 20 20]
	// [30 30 40 40]
	// [30 30 40 40]
}
