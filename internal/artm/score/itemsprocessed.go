package score

import "github.com/artm-core/artm/internal/artm/phimatrix"

// ItemsProcessed counts items and batches seen in a pass, and the total
// token weight both raw (straight from the batch) and scaled by the
// per-item TokenWeight the processor already computed, which folds in
// both transaction weight and modality weight.
type ItemsProcessed struct{}

func (ItemsProcessed) Name() string { return "ItemsProcessed" }

// ItemsProcessedValue is the finalized count summary.
type ItemsProcessedValue struct {
	Items        int
	Batches      int
	RawWeight    float64
	ScaledWeight float64
}

func (ItemsProcessed) CalculateScore(bp BatchPartial) any {
	v := ItemsProcessedValue{Items: len(bp.Items), Batches: 1}
	for _, it := range bp.Items {
		v.ScaledWeight += it.TokenWeight
	}
	for _, item := range bp.Batch.Items {
		for _, w := range item.TokenWeight {
			v.RawWeight += w
		}
	}
	return v
}

func (ItemsProcessed) AppendScore(cumulative, partial any) any {
	c, _ := cumulative.(ItemsProcessedValue)
	p := partial.(ItemsProcessedValue)
	c.Items += p.Items
	c.Batches += p.Batches
	c.RawWeight += p.RawWeight
	c.ScaledWeight += p.ScaledWeight
	return c
}

func (ItemsProcessed) Finalize(cumulative any, _ phimatrix.Matrix) any {
	c, _ := cumulative.(ItemsProcessedValue)
	return c
}
