package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files
type FLACDecoder struct {
	stream     *flac.Stream
	file       *os.File
	sampleRate int
	numChans   int
	bitDepth   int

	// Samples decoded beyond what the last ReadChunk consumed; FLAC
	// frames rarely line up with the requested chunk size.
	leftover []float64
}

// NewFLACDecoder creates a new FLAC decoder. Format information comes
// from the stream's own StreamInfo block.
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &FLACDecoder{
		stream:     stream,
		file:       f,
		sampleRate: int(stream.Info.SampleRate),
		numChans:   int(stream.Info.NChannels),
		bitDepth:   int(stream.Info.BitsPerSample),
	}, nil
}

// ReadChunk reads the next chunk of samples
func (d *FLACDecoder) ReadChunk(numSamples int) ([]float64, error) {
	samples := make([]float64, 0, numSamples)

	// Drain leftovers from the previous frame first
	if len(d.leftover) > 0 {
		take := min(numSamples, len(d.leftover))
		samples = append(samples, d.leftover[:take]...)
		d.leftover = d.leftover[take:]
	}

	norm := float64(int64(1) << (d.bitDepth - 1))

	for len(samples) < numSamples {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				if len(samples) == 0 {
					return nil, io.EOF
				}
				return samples, nil
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		nch := len(frame.Subframes)
		if nch == 0 {
			continue
		}
		frameLen := len(frame.Subframes[0].Samples)

		for i := 0; i < frameLen; i++ {
			var sum float64
			for ch := 0; ch < nch; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) / norm
			}
			v := sum / float64(nch)

			if len(samples) < numSamples {
				samples = append(samples, v)
			} else {
				d.leftover = append(d.leftover, v)
			}
		}
	}

	return samples, nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChans
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
