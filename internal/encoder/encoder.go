// Package encoder writes mosaic canvases out as video or still images.
// Video encoding pipes raw RGBA frames into an external ffmpeg process;
// a post-hoc transcode pass produces the final, widely compatible file
// and muxes audio. ffmpeg is the one external tool dependency.
package encoder

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// Config holds the encoder configuration
type Config struct {
	OutputPath string // Path to the intermediate MP4 file
	Width      int    // Video width in pixels
	Height     int    // Video height in pixels
	Framerate  int    // Frames per second
}

// Encoder streams raw RGBA frames to an ffmpeg process producing the
// intermediate video. It implements mosaic.FrameSink.
type Encoder struct {
	config Config
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	frames int
}

// New creates a new encoder instance
func New(config Config) (*Encoder, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", config.Width, config.Height)
	}
	if config.Framerate <= 0 {
		return nil, fmt.Errorf("invalid framerate: %d", config.Framerate)
	}
	if config.OutputPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	return &Encoder{config: config}, nil
}

// Initialize starts the ffmpeg process and opens the frame pipe.
func (e *Encoder) Initialize() error {
	e.cmd = exec.Command("ffmpeg", rawEncodeArgs(e.config)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening ffmpeg stdin: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	return nil
}

// rawEncodeArgs builds the argument list for the intermediate encode.
// The intermediate trades size for speed; quality settings live in the
// final transcode pass.
func rawEncodeArgs(cfg Config) []string {
	return []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fmt.Sprintf("%d", cfg.Framerate),
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-y",
		cfg.OutputPath,
	}
}

// WriteFrame appends one canvas to the video stream. The frame must
// match the configured dimensions exactly.
func (e *Encoder) WriteFrame(img *image.RGBA) error {
	if e.stdin == nil {
		return fmt.Errorf("encoder not initialized")
	}
	b := img.Bounds()
	if b.Dx() != e.config.Width || b.Dy() != e.config.Height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d",
			b.Dx(), b.Dy(), e.config.Width, e.config.Height)
	}

	if _, err := e.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("writing frame %d: %w (ffmpeg: %s)", e.frames, err, e.stderrTail())
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int {
	return e.frames
}

// Close finishes the stream and waits for ffmpeg to finalize the file.
func (e *Encoder) Close() error {
	if e.stdin == nil {
		return nil
	}
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("closing ffmpeg stdin: %w", err)
	}
	e.stdin = nil

	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w (ffmpeg: %s)", err, e.stderrTail())
	}
	return nil
}

// stderrTail returns the last chunk of ffmpeg's diagnostic output, which
// is where it reports the actual failure cause.
func (e *Encoder) stderrTail() string {
	const tail = 512
	s := e.stderr.String()
	if len(s) > tail {
		s = "..." + s[len(s)-tail:]
	}
	return s
}
