package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Decoder defines the interface for all audio format decoders. Chunks
// are mono float64 samples in [-1, 1]; multi-channel input is downmixed
// by averaging.
type Decoder interface {
	// ReadChunk reads up to numSamples samples, returning io.EOF once
	// the stream is exhausted.
	ReadChunk(numSamples int) ([]float64, error)

	// SampleRate returns the audio sample rate in Hz.
	SampleRate() int

	// NumChannels returns the number of channels in the source stream.
	NumChannels() int

	// Close closes the decoder and releases resources.
	Close() error
}

// Open creates a decoder for the file based on its extension.
func Open(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(filename))
	}
}
