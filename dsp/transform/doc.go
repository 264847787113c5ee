// Package transform binds complex forward and inverse transforms to engine
// memory.
//
// A Context owns a spec block and a persistent work buffer sized for one
// (size, flag, hint) signature. Initialize with an unchanged signature is a
// no-op; any other signature releases the old buffers first. KindFFT
// contexts only accept power-of-two sizes and reject others before touching
// the engine. KindDFT contexts accept any positive size.
//
//	ctx := transform.New(eng, alloc, transform.KindFFT)
//	defer ctx.Close()
//	if err := ctx.Initialize(1024, engine.DivInvByN, engine.HintNone); err != nil {
//		return err
//	}
//	err := ctx.ForwardInPlace(buf)
package transform
