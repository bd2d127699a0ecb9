package score

import "github.com/artm-core/artm/internal/artm/phimatrix"

// SparsityPhi reports the fraction of Φ cells at or below Eps, restricted
// to ClassIDs if set. It needs no per-batch accumulation: Finalize scans
// the committed Φ directly.
type SparsityPhi struct {
	Eps      float64
	ClassIDs []string // nil/empty means all modalities
}

func (SparsityPhi) Name() string                       { return "SparsityPhi" }
func (SparsityPhi) CalculateScore(BatchPartial) any     { return nil }
func (SparsityPhi) AppendScore(cumulative, _ any) any   { return cumulative }

// SparsityValue is the finalized fraction-below-threshold value.
type SparsityValue struct {
	ZeroCount  int
	TotalCount int
	Value      float64
}

func (s SparsityPhi) Finalize(_ any, phi phimatrix.Matrix) any {
	allow := classSet(s.ClassIDs)
	var zero, total int
	for i := 0; i < phi.TokenSize(); i++ {
		if allow != nil && !allow[phi.ClassAt(i)] {
			continue
		}
		phi.RowNonzero(i, func(_ int, v float64) {
			total++
			if v <= s.Eps {
				zero++
			}
		})
	}
	return sparsityValue(zero, total)
}

func classSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	m := make(map[string]bool, len(ids))
	for _, c := range ids {
		m[c] = true
	}
	return m
}

func sparsityValue(zero, total int) SparsityValue {
	v := 0.0
	if total > 0 {
		v = float64(zero) / float64(total)
	}
	return SparsityValue{ZeroCount: zero, TotalCount: total, Value: v}
}

// SparsityTheta reports the fraction of θ cells at or below Eps across the
// items processed in the pass, accumulated from per-item θ rows (Θ itself
// is per-batch/transient, so this score gathers it during CalculateScore
// instead of scanning a persisted matrix in Finalize).
type SparsityTheta struct {
	Eps float64
}

func (SparsityTheta) Name() string { return "SparsityTheta" }

func (s SparsityTheta) CalculateScore(bp BatchPartial) any {
	var zero, total int
	for _, it := range bp.Items {
		for _, v := range it.Theta {
			total++
			if v <= s.Eps {
				zero++
			}
		}
	}
	return sparsityValue(zero, total)
}

func (SparsityTheta) AppendScore(cumulative, partial any) any {
	c, _ := cumulative.(SparsityValue)
	p := partial.(SparsityValue)
	return sparsityValue(c.ZeroCount+p.ZeroCount, c.TotalCount+p.TotalCount)
}

func (SparsityTheta) Finalize(cumulative any, _ phimatrix.Matrix) any {
	c, _ := cumulative.(SparsityValue)
	return c
}
