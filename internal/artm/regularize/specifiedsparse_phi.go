package regularize

import (
	"sort"

	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// SpecifiedSparsePhi keeps only the top KeepFraction tokens by φ_{w,t} per
// topic and pushes the rest toward zero: for tokens below the per-topic
// cutoff, r_{w,t} -= tau * n_{w,t}.
type SpecifiedSparsePhi struct {
	Tau          float64
	KeepFraction float64 // in (0,1]; values outside are treated as 1 (keep all)
}

func (SpecifiedSparsePhi) Name() string { return "SpecifiedSparsePhi" }

func (s SpecifiedSparsePhi) RegularizePhi(n, ref phimatrix.Matrix, r phimatrix.Matrix) {
	frac := s.KeepFraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	W := ref.TokenSize()
	keep := int(float64(W) * frac)
	if keep < 1 {
		keep = 1
	}
	if keep >= W {
		return // nothing to sparsify
	}

	for t := 0; t < ref.TopicSize(); t++ {
		values := make([]float64, W)
		for i := 0; i < W; i++ {
			values[i] = ref.Get(i, t)
		}
		sorted := append([]float64(nil), values...)
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
		threshold := sorted[keep-1]

		for i := 0; i < W; i++ {
			if values[i] < threshold {
				r.Increase(i, t, -s.Tau*n.Get(i, t))
			}
		}
	}
}
