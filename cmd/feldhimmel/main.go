package main

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/feldhimmel/feldhimmel/internal/audio"
	"github.com/feldhimmel/feldhimmel/internal/cli"
	"github.com/feldhimmel/feldhimmel/internal/config"
	"github.com/feldhimmel/feldhimmel/internal/encoder"
	"github.com/feldhimmel/feldhimmel/internal/mosaic"
	"github.com/feldhimmel/feldhimmel/internal/renderer"
	"github.com/feldhimmel/feldhimmel/internal/source"
	"github.com/feldhimmel/feldhimmel/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

// RenderFlags are shared by every subcommand that samples tiles.
type RenderFlags struct {
	TileWidth  int     `help:"Tile width in pixels" default:"${tile_width}"`
	TileHeight int     `help:"Tile height in pixels" default:"${tile_height}"`
	Width      int     `help:"Canvas width in pixels" default:"${canvas_width}"`
	Height     int     `help:"Canvas height in pixels" default:"${canvas_height}"`
	Horizon    float64 `help:"Horizon row as a fraction of canvas height" default:"${horizon}"`
	Seed       int64   `help:"Random seed; 0 derives one from the clock" default:"0"`
}

func (f RenderFlags) validate() error {
	if f.TileWidth <= 0 || f.TileHeight <= 0 {
		return fmt.Errorf("tile size must be positive, got %dx%d", f.TileWidth, f.TileHeight)
	}
	if f.Width < f.TileWidth || f.Height < f.TileHeight {
		return fmt.Errorf("canvas %dx%d cannot hold a single %dx%d tile",
			f.Width, f.Height, f.TileWidth, f.TileHeight)
	}
	if f.Horizon < 0 || f.Horizon > 1 {
		return fmt.Errorf("horizon must be in [0, 1], got %g", f.Horizon)
	}
	return nil
}

// sampler builds the run's single shared sampler. Every random draw in a
// run flows through its generator, so a fixed seed reproduces the run
// byte for byte.
func (f RenderFlags) sampler() *mosaic.Sampler {
	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return mosaic.NewSampler(f.TileWidth, f.TileHeight, f.Horizon, rng)
}

// VideoFlags are shared by the video-producing subcommands.
type VideoFlags struct {
	Duration         int    `help:"Video duration in seconds" default:"${duration}"`
	FPS              int    `help:"Frames per second" default:"${fps}"`
	Title            string `help:"Caption for the poster image; a poster is only generated when set"`
	Font             string `help:"TrueType font file for the poster caption"`
	KeepIntermediate bool   `help:"Keep the intermediate video file after transcoding"`
	NoUI             bool   `help:"Disable the interactive progress display"`
}

func (f VideoFlags) validate() error {
	if f.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", f.Duration)
	}
	if f.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", f.FPS)
	}
	return nil
}

// AnimateCmd renders the crossfade video: the canvas starts as a mosaic
// of pool A and is gradually overtaken by pool B at an accelerating
// replacement rate.
type AnimateCmd struct {
	RenderFlags `embed:""`
	VideoFlags  `embed:""`

	StartRate float64 `help:"Tiles replaced per frame at the start of the run" default:"${start_rate}"`
	EndRate   float64 `help:"Tiles replaced per frame at the end of the run" default:"${end_rate}"`
	Audio     string  `help:"Audio track to mux into the output" type:"existingfile"`

	PoolA  string `arg:"" help:"Directory of opening-scene source images" type:"existingdir"`
	PoolB  string `arg:"" help:"Directory of closing-scene source images" type:"existingdir"`
	Output string `arg:"" help:"Output MP4 file"`
}

func (c *AnimateCmd) Run() error {
	if err := c.RenderFlags.validate(); err != nil {
		return err
	}
	if err := c.VideoFlags.validate(); err != nil {
		return err
	}

	load := func() (runSpec, error) {
		poolA, err := source.Load(c.PoolA, c.TileWidth, c.TileHeight)
		if err != nil {
			return runSpec{}, fmt.Errorf("loading pool A: %w", err)
		}
		// Pool B may be empty: replacement then degrades to black tiles
		// instead of aborting the run.
		poolB, err := source.Load(c.PoolB, c.TileWidth, c.TileHeight)
		if err != nil && !errors.Is(err, source.ErrNoImages) {
			return runSpec{}, fmt.Errorf("loading pool B: %w", err)
		}
		return runSpec{
			PoolA:  poolA,
			PoolB:  poolB,
			Policy: mosaic.LinearPolicy{StartRate: c.StartRate, EndRate: c.EndRate},
		}, nil
	}

	return runVideo(c.RenderFlags, c.VideoFlags, c.Output, c.Audio, load)
}

// BeatsCmd renders the beat-synchronized video: tiles from a single pool
// are swapped only on detected audio onsets, and the audio track is muxed
// into the output.
type BeatsCmd struct {
	RenderFlags `embed:""`
	VideoFlags  `embed:""`

	StartRate   float64 `help:"Tiles replaced per beat at the start of the run" default:"${beat_rate}"`
	EndRate     float64 `help:"Tiles replaced per beat at the end of the run" default:"${beat_rate}"`
	ResizeTiles bool    `help:"Scale each source image to tile size instead of cropping regions"`

	Pool   string `arg:"" help:"Directory of source images" type:"existingdir"`
	Audio  string `arg:"" help:"Audio file to detect beats from (WAV, MP3 or FLAC)" type:"existingfile"`
	Output string `arg:"" help:"Output MP4 file"`
}

func (c *BeatsCmd) Run() error {
	if err := c.RenderFlags.validate(); err != nil {
		return err
	}
	if err := c.VideoFlags.validate(); err != nil {
		return err
	}

	load := func() (runSpec, error) {
		var pool mosaic.Pool
		var err error
		if c.ResizeTiles {
			pool, err = source.LoadResized(c.Pool, c.TileWidth, c.TileHeight)
		} else {
			pool, err = source.Load(c.Pool, c.TileWidth, c.TileHeight)
		}
		if err != nil {
			return runSpec{}, fmt.Errorf("loading pool: %w", err)
		}

		onsets, err := audio.DetectOnsets(c.Audio, c.FPS)
		if err != nil {
			return runSpec{}, fmt.Errorf("detecting beats: %w", err)
		}

		return runSpec{
			PoolA:  pool,
			Policy: mosaic.BeatPolicy{StartRate: c.StartRate, EndRate: c.EndRate, Onsets: onsets},
			Grid:   mosaic.BuildFlatGrid,
			Onsets: len(onsets),
		}, nil
	}

	return runVideo(c.RenderFlags, c.VideoFlags, c.Output, c.Audio, load)
}

// StillCmd renders a single consistent mosaic image.
type StillCmd struct {
	RenderFlags `embed:""`

	Pool   string `arg:"" help:"Directory of source images" type:"existingdir"`
	Output string `arg:"" help:"Output PNG file"`
}

func (c *StillCmd) Run() error {
	if err := c.RenderFlags.validate(); err != nil {
		return err
	}

	pool, err := source.Load(c.Pool, c.TileWidth, c.TileHeight)
	if err != nil {
		return fmt.Errorf("loading pool: %w", err)
	}

	canvas, err := mosaic.BuildStill(c.Width, c.Height, c.sampler(), pool)
	if err != nil {
		return err
	}
	if err := encoder.SavePNG(canvas, c.Output); err != nil {
		return err
	}

	cli.PrintSuccess(fmt.Sprintf("mosaic saved to %s", c.Output))
	return nil
}

// SegmentCmd cuts source photographs into a folder of ready-made tiles.
type SegmentCmd struct {
	TileWidth  int `help:"Tile width in pixels" default:"${tile_width}"`
	TileHeight int `help:"Tile height in pixels" default:"${tile_height}"`

	Source string `arg:"" help:"Directory of source images" type:"existingdir"`
	Output string `arg:"" help:"Directory to write tiles into"`
}

func (c *SegmentCmd) Run() error {
	if c.TileWidth <= 0 || c.TileHeight <= 0 {
		return fmt.Errorf("tile size must be positive, got %dx%d", c.TileWidth, c.TileHeight)
	}

	n, err := source.Segment(c.Source, c.Output, c.TileWidth, c.TileHeight)
	if err != nil {
		return err
	}

	cli.PrintSuccess(fmt.Sprintf("wrote %d tiles to %s", n, c.Output))
	return nil
}

// CombineCmd concatenates two rendered videos with a solid-colour gap.
type CombineCmd struct {
	GapSeconds int    `help:"Seconds of solid colour between the two videos" default:"${gap_seconds}"`
	GapColor   string `help:"Hex colour of the gap segment" default:"${gap_color}"`
	Audio      string `help:"Audio track for the combined video" type:"existingfile"`
	Width      int    `help:"Video width in pixels" default:"${canvas_width}"`
	Height     int    `help:"Video height in pixels" default:"${canvas_height}"`
	FPS        int    `help:"Frames per second" default:"${fps}"`

	First  string `arg:"" help:"First input video" type:"existingfile"`
	Second string `arg:"" help:"Second input video" type:"existingfile"`
	Output string `arg:"" help:"Output MP4 file"`
}

func (c *CombineCmd) Run() error {
	if c.GapSeconds < 0 {
		return fmt.Errorf("gap seconds must not be negative, got %d", c.GapSeconds)
	}
	if _, _, _, err := config.ParseHexColor(c.GapColor); err != nil {
		return err
	}

	err := encoder.Combine(c.First, c.Second, c.Output, encoder.CombineOptions{
		GapSeconds: c.GapSeconds,
		GapColor:   c.GapColor,
		Width:      c.Width,
		Height:     c.Height,
		Framerate:  c.FPS,
		AudioPath:  c.Audio,
	})
	if err != nil {
		return err
	}

	cli.PrintSuccess(fmt.Sprintf("combined video saved to %s", c.Output))
	return nil
}

var CLI struct {
	Animate AnimateCmd `cmd:"" help:"Render a crossfade mosaic video from two image pools."`
	Beats   BeatsCmd   `cmd:"" help:"Render a beat-synchronized mosaic video from one image pool."`
	Still   StillCmd   `cmd:"" help:"Render a single consistent mosaic image."`
	Segment SegmentCmd `cmd:"" help:"Cut source images into tile-sized pieces."`
	Combine CombineCmd `cmd:"" help:"Concatenate two rendered videos with a gap between them."`

	Version kong.VersionFlag `help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("feldhimmel"),
		kong.Description("Grow horizon-aware tile mosaic videos and stills from a folder of photographs."),
		kong.UsageOnError(),
		kong.Vars{
			"version":       version,
			"tile_width":    strconv.Itoa(config.TileWidth),
			"tile_height":   strconv.Itoa(config.TileHeight),
			"canvas_width":  strconv.Itoa(config.CanvasWidth),
			"canvas_height": strconv.Itoa(config.CanvasHeight),
			"horizon":       strconv.FormatFloat(config.HorizonRatio, 'g', -1, 64),
			"fps":           strconv.Itoa(config.FPS),
			"duration":      strconv.Itoa(config.DurationSeconds),
			"start_rate":    strconv.FormatFloat(config.StartReplacementRate, 'g', -1, 64),
			"end_rate":      strconv.FormatFloat(config.EndReplacementRate, 'g', -1, 64),
			"beat_rate":     strconv.FormatFloat(config.BeatReplacementRate, 'g', -1, 64),
			"gap_seconds":   strconv.Itoa(config.GapSeconds),
			"gap_color":     config.GapColor,
		},
	)

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// runSpec is what a video subcommand's loader produces: the pools, the
// step policy, and optionally a non-default grid builder.
type runSpec struct {
	PoolA, PoolB mosaic.Pool
	Policy       mosaic.StepPolicy
	Grid         mosaic.GridFunc
	Onsets       int
}

// runVideo drives a full video run: load pools, render frames into the
// streaming encoder, transcode the intermediate, and generate the poster.
// Loading happens inside the worker goroutine so the progress display is
// up while it runs.
func runVideo(rf RenderFlags, vf VideoFlags, output, audioPath string, load func() (runSpec, error)) error {
	sampler := rf.sampler()
	totalFrames := vf.Duration * vf.FPS
	intermediate := output + ".raw.mp4"

	enc, err := encoder.New(encoder.Config{
		OutputPath: intermediate,
		Width:      rf.Width,
		Height:     rf.Height,
		Framerate:  vf.FPS,
	})
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}

	if vf.NoUI {
		return runVideoPlain(rf, vf, output, audioPath, intermediate, sampler, totalFrames, enc, load)
	}

	p := tea.NewProgram(ui.NewRenderModel())

	var canvas *image.RGBA
	var replaced int
	var runErr error
	start := time.Now()

	go func() {
		spec, err := load()
		if err != nil {
			runErr = err
			p.Quit()
			return
		}
		p.Send(ui.LoadComplete{PoolA: len(spec.PoolA), PoolB: len(spec.PoolB), Onsets: spec.Onsets})

		if err := enc.Initialize(); err != nil {
			runErr = fmt.Errorf("initializing encoder: %w", err)
			p.Quit()
			return
		}

		engine := &mosaic.Engine{
			Sampler:     sampler,
			PoolA:       spec.PoolA,
			PoolB:       spec.PoolB,
			Policy:      spec.Policy,
			Grid:        spec.Grid,
			Sink:        enc,
			TotalFrames: totalFrames,
			OnStep: func(frame, total, stepReplaced int) {
				replaced += stepReplaced
				update := ui.StepProgress{
					Frame:       frame,
					TotalFrames: total,
					Replaced:    replaced,
					Elapsed:     time.Since(start),
				}
				if frame%vf.FPS == 0 {
					update.FileSize = fileSize(intermediate)
				}
				p.Send(update)
			},
		}

		canvas, runErr = engine.Run(rf.Width, rf.Height)
		if closeErr := enc.Close(); runErr == nil {
			runErr = closeErr
		}
		if runErr != nil {
			p.Quit()
			return
		}

		runErr = encoder.Transcode(intermediate, output, encoder.TranscodeOptions{
			AudioPath: audioPath,
			KeepInput: vf.KeepIntermediate,
		})
		if runErr != nil {
			p.Quit()
			return
		}

		p.Send(ui.RunComplete{
			OutputFile:    output,
			TotalFrames:   totalFrames,
			TilesReplaced: replaced,
			TotalTime:     time.Since(start),
			FileSize:      fileSize(output),
		})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running progress UI: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	return generatePoster(canvas, output, vf)
}

// runVideoPlain is the --no-ui path: same pipeline, line-based progress.
func runVideoPlain(rf RenderFlags, vf VideoFlags, output, audioPath, intermediate string, sampler *mosaic.Sampler, totalFrames int, enc *encoder.Encoder, load func() (runSpec, error)) error {
	cli.PrintBanner()

	spec, err := load()
	if err != nil {
		return err
	}
	cli.PrintInfo("Pool A", fmt.Sprintf("%d images", len(spec.PoolA)))
	if len(spec.PoolB) > 0 {
		cli.PrintInfo("Pool B", fmt.Sprintf("%d images", len(spec.PoolB)))
	}
	if spec.Onsets > 0 {
		cli.PrintInfo("Beats", strconv.Itoa(spec.Onsets))
	}
	cli.PrintInfo("Frames", strconv.Itoa(totalFrames))

	if err := enc.Initialize(); err != nil {
		return fmt.Errorf("initializing encoder: %w", err)
	}

	var replaced int
	start := time.Now()
	lastDecile := 0

	engine := &mosaic.Engine{
		Sampler:     sampler,
		PoolA:       spec.PoolA,
		PoolB:       spec.PoolB,
		Policy:      spec.Policy,
		Grid:        spec.Grid,
		Sink:        enc,
		TotalFrames: totalFrames,
		OnStep: func(frame, total, stepReplaced int) {
			replaced += stepReplaced
			if decile := frame * 10 / total; decile > lastDecile {
				lastDecile = decile
				cli.PrintInfo("Progress", fmt.Sprintf("%d%% (%d/%d frames, %d tiles replaced)",
					decile*10, frame, total, replaced))
			}
		},
	}

	canvas, err := engine.Run(rf.Width, rf.Height)
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	err = encoder.Transcode(intermediate, output, encoder.TranscodeOptions{
		AudioPath: audioPath,
		KeepInput: vf.KeepIntermediate,
	})
	if err != nil {
		return err
	}

	cli.PrintRenderSummary(
		output,
		cli.FormatDuration(time.Since(start)),
		cli.FormatBytes(fileSize(output)),
		strconv.Itoa(totalFrames),
		fmt.Sprintf("%d replaced", replaced),
	)

	return generatePoster(canvas, output, vf)
}

// generatePoster writes the captioned poster next to the video when a
// title was given.
func generatePoster(canvas *image.RGBA, output string, vf VideoFlags) error {
	if vf.Title == "" || canvas == nil {
		return nil
	}
	posterPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".png"
	if err := renderer.GeneratePoster(canvas, posterPath, vf.Title, vf.Font); err != nil {
		return fmt.Errorf("generating poster: %w", err)
	}
	cli.PrintSuccess(fmt.Sprintf("poster saved to %s", posterPath))
	return nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
