package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes mono 16-bit PCM samples (floats in [-1, 1]) to a
// WAV file under dir and returns its path.
func writeTestWAV(t *testing.T, dir, name string, sampleRate int, samples []float64) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test WAV: %v", err)
	}
	return path
}

// TestDetectOnsets_ClickTrack verifies the full detection path on a
// synthetic click track: short loud sine bursts on silence at known
// timestamps must each produce one onset within a frame or two of the
// burst position, and silence must produce none.
func TestDetectOnsets_ClickTrack(t *testing.T) {
	const (
		sampleRate = 44100
		fps        = 30
		duration   = 3.0
	)
	burstTimes := []float64{0.5, 1.5, 2.5}

	samples := make([]float64, int(duration*sampleRate))
	for _, bt := range burstTimes {
		start := int(bt * sampleRate)
		for i := 0; i < 2048 && start+i < len(samples); i++ {
			ti := float64(i) / sampleRate
			samples[start+i] = 0.8 * math.Sin(2*math.Pi*880*ti)
		}
	}

	path := writeTestWAV(t, t.TempDir(), "clicks.wav", sampleRate, samples)

	onsets, err := DetectOnsets(path, fps)
	if err != nil {
		t.Fatalf("DetectOnsets returned error: %v", err)
	}

	for _, bt := range burstTimes {
		wantFrame := int(bt * fps)
		found := false
		for frame := range onsets {
			if abs(frame-wantFrame) <= 2 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no onset detected near frame %d (burst at %.1fs); got %v", wantFrame, bt, onsets)
		}
	}

	if len(onsets) > 2*len(burstTimes) {
		t.Errorf("detected %d onsets for %d bursts; detector is too trigger-happy", len(onsets), len(burstTimes))
	}
}

// TestDetectOnsets_SilenceHasNone verifies that pure silence produces no
// onsets, catching threshold bugs that fire on noise-floor jitter.
func TestDetectOnsets_SilenceHasNone(t *testing.T) {
	samples := make([]float64, 44100)
	path := writeTestWAV(t, t.TempDir(), "silence.wav", 44100, samples)

	onsets, err := DetectOnsets(path, 30)
	if err != nil {
		t.Fatalf("DetectOnsets returned error: %v", err)
	}
	if len(onsets) != 0 {
		t.Errorf("detected %d onsets in silence, want 0", len(onsets))
	}
}

// TestPickPeaks_AdaptiveThreshold verifies peak picking on a hand-built
// flux signal: isolated spikes are found, plateaus and sub-threshold
// bumps are not, and the minimum gap suppresses double triggers.
func TestPickPeaks_AdaptiveThreshold(t *testing.T) {
	flux := make([]float64, 60)
	flux[10] = 10 // clear spike
	flux[11] = 9  // shoulder within the min gap: suppressed
	flux[40] = 12 // second clear spike

	peaks := pickPeaks(flux)
	if len(peaks) != 2 {
		t.Fatalf("got peaks at %v, want exactly 2", peaks)
	}
	if peaks[0] != 10 || peaks[1] != 40 {
		t.Errorf("peaks = %v, want [10 40]", peaks)
	}
}

// TestOpen_UnsupportedExtension verifies the format dispatch error path.
func TestOpen_UnsupportedExtension(t *testing.T) {
	if _, err := Open("beat.ogg"); err == nil {
		t.Fatal("Open(.ogg) succeeded, want unsupported-format error")
	}
}

// TestWAVDecoder_DownmixesStereo verifies that a stereo WAV is averaged
// to mono with the expected values, catching channel interleave bugs.
func TestWAVDecoder_DownmixesStereo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	const n = 1000
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 2, SampleRate: 44100},
		Data:   make([]int, n*2),
	}
	for i := 0; i < n; i++ {
		buf.Data[i*2] = int(math.Trunc(0.4 * 32767))   // left
		buf.Data[i*2+1] = int(math.Trunc(0.2 * 32767)) // right
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dec, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 {
		t.Errorf("SampleRate = %d, want 44100", dec.SampleRate())
	}
	if dec.NumChannels() != 2 {
		t.Errorf("NumChannels = %d, want 2", dec.NumChannels())
	}

	samples, err := dec.ReadChunk(100)
	if err != nil {
		t.Fatalf("ReadChunk returned error: %v", err)
	}
	if len(samples) != 100 {
		t.Fatalf("got %d samples, want 100", len(samples))
	}
	for i, s := range samples {
		if math.Abs(s-0.3) > 0.01 {
			t.Fatalf("sample %d = %v, want ~0.3 (stereo average)", i, s)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
