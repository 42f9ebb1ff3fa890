package mosaic

import (
	"fmt"
	"image"
)

// FrameSink receives the canvas once per time step. The engine hands over
// the same buffer every step; sinks must consume it before returning.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
}

// StepFunc is an optional per-step callback for progress reporting.
// replaced is the number of tiles refreshed on this step.
type StepFunc func(frame, totalFrames, replaced int)

// Engine drives one mosaic run: build the initial grid from pool A, then
// one scheduler/mutator round per frame, handing the canvas to the sink
// after every step. Execution is fully sequential — the canvas is the
// only shared mutable state and the engine is its sole writer.
type Engine struct {
	Sampler     *Sampler
	PoolA       Pool
	PoolB       Pool
	Policy      StepPolicy
	Sink        FrameSink
	TotalFrames int
	OnStep      StepFunc

	// Grid builds the initial canvas and slot list. Nil means BuildGrid,
	// the horizon-zoned builder.
	Grid GridFunc
}

// GridFunc builds an initial canvas and its slot list from pool.
type GridFunc func(canvasW, canvasH int, s *Sampler, pool Pool) (*image.RGBA, []Slot, error)

// Run executes the full run and returns the final canvas. A run either
// completes all steps or aborts on the first unrecoverable error; there
// is no partial recovery.
func (e *Engine) Run(canvasW, canvasH int) (*image.RGBA, error) {
	grid := e.Grid
	if grid == nil {
		grid = BuildGrid
	}
	canvas, slots, err := grid(canvasW, canvasH, e.Sampler, e.PoolA)
	if err != nil {
		return nil, fmt.Errorf("building initial grid: %w", err)
	}

	for frame := 0; frame < e.TotalFrames; frame++ {
		replaced := 0
		plan, fire := e.Policy.Plan(e.Sampler.Rng, frame, e.TotalFrames)
		if fire {
			if err := ApplyStep(canvas, slots, e.Sampler, plan, e.PoolA, e.PoolB); err != nil {
				return nil, fmt.Errorf("replacing tiles at frame %d: %w", frame, err)
			}
			replaced = plan.Count
		}

		if err := e.Sink.WriteFrame(canvas); err != nil {
			return nil, fmt.Errorf("emitting frame %d: %w", frame, err)
		}

		if e.OnStep != nil {
			e.OnStep(frame+1, e.TotalFrames, replaced)
		}
	}

	return canvas, nil
}
