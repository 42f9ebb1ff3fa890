package mosaic

import "math/rand"

// StepPlan is the per-step output of the replacement scheduler: how many
// slots to refresh and the probability of drawing each replacement from
// pool B rather than pool A.
type StepPlan struct {
	Count    int
	PoolBias float64
}

// PlanStep interpolates the replacement rate between startRate and
// endRate at the given progress and rounds it stochastically: the
// fractional part becomes the probability of one extra replacement, so
// the expected count equals the rate exactly even when it is fractional.
// Truncating instead would make sub-1.0 rates do nothing at all and
// integer-crossing rates step visibly.
func PlanStep(rng *rand.Rand, progress, startRate, endRate float64) StepPlan {
	rate := startRate + (endRate-startRate)*progress

	whole := int(rate)
	count := whole
	if rng.Float64() < rate-float64(whole) {
		count++
	}

	return StepPlan{Count: count, PoolBias: progress}
}

// StepPolicy decides, per frame, whether the scheduler fires and with
// what plan. The two concrete policies are the only difference between
// the crossfade and beat-synchronized pipelines; everything else runs
// through the same engine.
type StepPolicy interface {
	Plan(rng *rand.Rand, frame, totalFrames int) (StepPlan, bool)
}

// LinearPolicy fires on every frame. The replacement rate accelerates
// linearly across the run and the pool bias tracks progress, producing a
// gradual compositional shift from pool A to pool B.
type LinearPolicy struct {
	StartRate, EndRate float64
}

func (p LinearPolicy) Plan(rng *rand.Rand, frame, totalFrames int) (StepPlan, bool) {
	progress := float64(frame) / float64(totalFrames)
	return PlanStep(rng, progress, p.StartRate, p.EndRate), true
}

// BeatPolicy fires only on frames flagged as beat onsets. There is a
// single source pool in this mode, so the pool bias is forced to zero.
// The rate still interpolates over the frame-based progress, matching
// the accelerating-transition behaviour of the per-frame policy.
type BeatPolicy struct {
	StartRate, EndRate float64
	Onsets             map[int]struct{}
}

func (p BeatPolicy) Plan(rng *rand.Rand, frame, totalFrames int) (StepPlan, bool) {
	if _, ok := p.Onsets[frame]; !ok {
		return StepPlan{}, false
	}
	progress := float64(frame) / float64(totalFrames)
	plan := PlanStep(rng, progress, p.StartRate, p.EndRate)
	plan.PoolBias = 0
	return plan, true
}
