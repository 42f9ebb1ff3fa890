package encoder

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// TranscodeOptions configures the final re-encode pass.
type TranscodeOptions struct {
	AudioPath string // optional; muxed in when set
	KeepInput bool   // leave the intermediate in place after a successful transcode
}

// Transcode re-encodes the intermediate video into a widely compatible
// H.264 file, optionally muxing an audio track, and removes the
// intermediate on success unless KeepInput is set. On failure the intermediate is left in place
// and the returned error names it, so the run's work is never lost to a
// post-processing problem.
func Transcode(inputPath, outputPath string, opts TranscodeOptions) error {
	args := []string{"-i", inputPath}
	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	)
	if opts.AudioPath != "" {
		args = append(args,
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	}
	args = append(args, "-y", outputPath)

	if err := runFFmpeg(args); err != nil {
		return fmt.Errorf("transcode failed, intermediate video preserved at %s: %w", inputPath, err)
	}

	if opts.KeepInput {
		return nil
	}
	if err := os.Remove(inputPath); err != nil {
		return fmt.Errorf("removing intermediate %s: %w", inputPath, err)
	}
	return nil
}

// CombineOptions configures the gap inserted between the two videos.
type CombineOptions struct {
	GapSeconds int
	GapColor   string // hex colour, e.g. "#FFFFFF"
	Width      int    // must match the source videos
	Height     int
	Framerate  int
	AudioPath  string // optional full-length audio track
}

// Combine concatenates two generated videos with a solid-colour gap
// between them and an optional audio track, in a single ffmpeg
// invocation. Both inputs must share the configured dimensions and
// frame rate.
func Combine(firstPath, secondPath, outputPath string, opts CombineOptions) error {
	filter := fmt.Sprintf(
		"color=%s:s=%dx%d:d=%d:r=%d[gap];[0:v:0][gap][1:v:0]concat=n=3:v=1:a=0[final_v]",
		gapColorArg(opts.GapColor), opts.Width, opts.Height, opts.GapSeconds, opts.Framerate,
	)

	args := []string{
		"-i", firstPath,
		"-i", secondPath,
	}
	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath)
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", "[final_v]",
	)
	if opts.AudioPath != "" {
		args = append(args,
			"-map", "2:a",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-y", outputPath,
	)

	if err := runFFmpeg(args); err != nil {
		return fmt.Errorf("combining videos: %w", err)
	}
	return nil
}

// gapColorArg converts "#RRGGBB" into ffmpeg's 0xRRGGBB colour syntax;
// anything without a hash is passed through (ffmpeg also accepts named
// colours like "white").
func gapColorArg(c string) string {
	if len(c) == 7 && c[0] == '#' {
		return "0x" + c[1:]
	}
	return c
}

func runFFmpeg(args []string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := stderr.String()
		const tail = 1024
		if len(diag) > tail {
			diag = "..." + diag[len(diag)-tail:]
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, diag)
	}
	return nil
}
