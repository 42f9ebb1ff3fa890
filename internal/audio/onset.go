package audio

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/argusdusty/gofft"

	"github.com/feldhimmel/feldhimmel/internal/config"
)

// Onset picking parameters. The flux threshold is adaptive: a hop counts
// as an onset when its flux is a local maximum and exceeds the windowed
// mean by sensitivity. minGapHops suppresses double triggers on one
// transient (~35ms at 44.1kHz with a 512 hop).
const (
	onsetWindowHops  = 10
	onsetSensitivity = 1.5
	onsetMinGapHops  = 3
)

// DetectOnsets decodes the audio file and returns the set of video frame
// indices, at the given frame rate, that contain a detected onset event.
// Membership in this set is the engine's sole gate for beat-synchronized
// tile replacement.
func DetectOnsets(filename string, fps int) (map[int]struct{}, error) {
	dec, err := Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}
	defer dec.Close()

	samples, err := readAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	flux, err := spectralFlux(samples)
	if err != nil {
		return nil, err
	}

	frames := make(map[int]struct{})
	for _, hop := range pickPeaks(flux) {
		// Centre of the analysis window, in seconds.
		t := (float64(hop*config.OnsetHopSize) + float64(config.OnsetFFTSize)/2) /
			float64(dec.SampleRate())
		frames[int(t*float64(fps))] = struct{}{}
	}

	return frames, nil
}

func readAll(dec Decoder) ([]float64, error) {
	var samples []float64
	for {
		chunk, err := dec.ReadChunk(8192)
		if err != nil {
			if err == io.EOF {
				return samples, nil
			}
			return nil, err
		}
		samples = append(samples, chunk...)
	}
}

// spectralFlux computes, per hop, the sum of positive magnitude changes
// across the spectrum — the standard onset strength signal. Energy
// arriving in any band raises the flux; energy decaying does not.
func spectralFlux(samples []float64) ([]float64, error) {
	fftSize := config.OnsetFFTSize
	hop := config.OnsetHopSize

	if len(samples) < fftSize {
		return nil, nil
	}
	numHops := (len(samples)-fftSize)/hop + 1

	window := hanning(fftSize)
	windowed := make([]float64, fftSize)
	prev := make([]float64, fftSize/2)
	mag := make([]float64, fftSize/2)

	flux := make([]float64, numHops)
	for h := 0; h < numHops; h++ {
		seg := samples[h*hop : h*hop+fftSize]
		for i := range seg {
			windowed[i] = seg[i] * window[i]
		}

		coeffs := gofft.Float64ToComplex128Array(windowed)
		if err := gofft.FFT(coeffs); err != nil {
			return nil, fmt.Errorf("FFT failed at hop %d: %w", h, err)
		}

		var sum float64
		for k := 0; k < fftSize/2; k++ {
			mag[k] = cmplx.Abs(coeffs[k])
			if d := mag[k] - prev[k]; d > 0 {
				sum += d
			}
		}
		flux[h] = sum
		prev, mag = mag, prev
	}

	return flux, nil
}

// pickPeaks returns the hop indices of flux peaks above the adaptive
// threshold, at least onsetMinGapHops apart.
func pickPeaks(flux []float64) []int {
	var peaks []int
	lastPeak := -onsetMinGapHops - 1

	for i := 1; i < len(flux)-1; i++ {
		if flux[i] < flux[i-1] || flux[i] <= flux[i+1] {
			continue
		}

		lo := max(0, i-onsetWindowHops)
		hi := min(len(flux), i+onsetWindowHops+1)
		var mean float64
		for j := lo; j < hi; j++ {
			mean += flux[j]
		}
		mean /= float64(hi - lo)

		if flux[i] <= mean*onsetSensitivity+1e-9 {
			continue
		}
		if i-lastPeak <= onsetMinGapHops {
			continue
		}

		peaks = append(peaks, i)
		lastPeak = i
	}

	return peaks
}

// hanning returns an n-point Hanning window.
func hanning(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
