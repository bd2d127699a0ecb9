package regularize

import (
	"github.com/artm-core/artm/internal/artm/ann"
	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// ImproveCoherencePhi pulls a token's column toward its K nearest
// neighbors' columns in the token-affinity index, approximating the
// effect of a coherence/co-occurrence dictionary without requiring one
// (see §4.6a): r_{w,t} += tau * Σ_{w' ∈ neighbors(w)} φ_{w',t}.
type ImproveCoherencePhi struct {
	Tau   float64
	K     int
	Index *ann.Index
}

func (ImproveCoherencePhi) Name() string { return "ImproveCoherencePhi" }

func (c ImproveCoherencePhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	if c.Index == nil {
		return
	}
	k := c.K
	if k <= 0 {
		k = 5
	}
	T := ref.TopicSize()

	for i := 0; i < ref.TokenSize(); i++ {
		for _, nb := range c.Index.Neighbors(ref, i, k) {
			for t := 0; t < T; t++ {
				r.Increase(i, t, c.Tau*ref.Get(nb.Row, t))
			}
		}
	}
}
