// Package audioio loads and stores audio clips for the command line tools.
//
// WAV files are read and written with go-audio/wav; MP3 and Ogg Vorbis
// files can be read.
package audioio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a decoder.
	ErrUnsupportedFormat = errors.New("audioio: unsupported format")
	// ErrInvalidFile is returned when a file cannot be parsed.
	ErrInvalidFile = errors.New("audioio: invalid file")
)

// Clip is decoded audio with one float32 slice per channel, scaled to
// [-1, 1].
type Clip struct {
	Rate     int
	Channels [][]float32
}

// Len returns the number of frames.
func (c *Clip) Len() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Mono returns the average of all channels.
func (c *Clip) Mono() []float32 {
	if len(c.Channels) == 1 {
		return c.Channels[0]
	}
	out := make([]float32, c.Len())
	if len(c.Channels) == 0 {
		return out
	}
	scale := 1 / float32(len(c.Channels))
	for _, ch := range c.Channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}
	return out
}

// Read decodes the file at path, choosing the decoder by extension.
func Read(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	case ".ogg", ".oga":
		return DecodeVorbis(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// DecodeWAV decodes an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM wav file", ErrInvalidFile)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audioio: decode wav: %w", err)
	}
	channels := int(dec.NumChans)
	scale := float32(math.Ldexp(1, int(dec.BitDepth)-1))
	if dec.BitDepth == 8 {
		// 8-bit wav samples are unsigned.
		for i := range buf.Data {
			buf.Data[i] -= 128
		}
	}
	return deinterleave(int(dec.SampleRate), channels, len(buf.Data), func(i int) float32 {
		return float32(buf.Data[i]) / scale
	}), nil
}

// DecodeMP3 decodes an MP3 stream. The decoder always yields stereo.
func DecodeMP3(r io.Reader) (*Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audioio: decode mp3: %w", err)
	}
	n := len(raw) / 2
	return deinterleave(dec.SampleRate(), 2, n, func(i int) float32 {
		return float32(int16(uint16(raw[2*i])|uint16(raw[2*i+1])<<8)) / 32768
	}), nil
}

// DecodeVorbis decodes an Ogg Vorbis stream.
func DecodeVorbis(r io.Reader) (*Clip, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return deinterleave(format.SampleRate, format.Channels, len(data), func(i int) float32 {
		return data[i]
	}), nil
}

func deinterleave(rate, channels, n int, at func(int) float32) *Clip {
	channels = max(1, channels)
	frames := n / channels
	c := &Clip{Rate: rate, Channels: make([][]float32, channels)}
	for ch := range channels {
		c.Channels[ch] = make([]float32, frames)
	}
	for i := range frames {
		for ch := range channels {
			c.Channels[ch][i] = at(i*channels + ch)
		}
	}
	return c
}

// WriteWAV stores c as a 16-bit PCM WAV file.
func WriteWAV(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWAV writes c as 16-bit PCM to w. Samples are clipped to [-1, 1].
func EncodeWAV(w io.WriteSeeker, c *Clip) error {
	channels := len(c.Channels)
	if channels == 0 || c.Rate <= 0 {
		return fmt.Errorf("%w: empty clip", ErrInvalidFile)
	}
	frames := c.Len()
	data := make([]int, frames*channels)
	for i := range frames {
		for ch := range channels {
			data[i*channels+ch] = int(PCM16(c.Channels[ch][i]))
		}
	}
	enc := wav.NewEncoder(w, c.Rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: c.Rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audioio: encode wav: %w", err)
	}
	return enc.Close()
}

// PCM16 converts one sample to 16-bit PCM with clipping.
func PCM16(v float32) int16 {
	s := math.Round(float64(v) * 32767)
	return int16(min(max(s, -32768), 32767))
}

// ToPCM16 converts x to 16-bit PCM.
func ToPCM16(x []float32) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		out[i] = PCM16(v)
	}
	return out
}
