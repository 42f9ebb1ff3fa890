package mosaic

import "image"

// ApplyStep performs one scheduled mutation round: plan.Count times it
// draws a slot uniformly (with replacement, within and across steps),
// picks pool B with probability plan.PoolBias, samples a fresh crop for
// the slot's zone and overwrites the canvas in place. An empty slot list
// makes the step a no-op.
func ApplyStep(canvas *image.RGBA, slots []Slot, s *Sampler, plan StepPlan, poolA, poolB Pool) error {
	if len(slots) == 0 {
		return nil
	}

	for i := 0; i < plan.Count; i++ {
		slot := slots[s.Rng.Intn(len(slots))]

		pool := poolA
		if s.Rng.Float64() < plan.PoolBias {
			pool = poolB
		}

		tile, err := s.Sample(pool, slot.Zone)
		if err != nil {
			return err
		}
		WriteTile(canvas, tile, slot.X, slot.Y)
	}

	return nil
}
