package regularize

import (
	"github.com/artm-core/artm/internal/artm/ann"
	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// NetPlsaPhi smooths a token's column toward its neighbors in the same
// token-affinity index ImproveCoherencePhi uses, but weights each
// neighbor by its graph closeness (1-distance) rather than uniformly —
// modeling a soft network/graph prior over tokens instead of a fixed
// coherence dictionary weight. Using the same index keeps this feature in
// scope without a separate co-occurrence collection pass (§4.6a).
type NetPlsaPhi struct {
	Tau   float64
	K     int
	Index *ann.Index
}

func (NetPlsaPhi) Name() string { return "NetPlsaPhi" }

func (n NetPlsaPhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	if n.Index == nil {
		return
	}
	k := n.K
	if k <= 0 {
		k = 5
	}
	T := ref.TopicSize()

	for i := 0; i < ref.TokenSize(); i++ {
		for _, nb := range n.Index.Neighbors(ref, i, k) {
			closeness := 1 - nb.Distance
			if closeness <= 0 {
				continue
			}
			for t := 0; t < T; t++ {
				r.Increase(i, t, n.Tau*closeness*ref.Get(nb.Row, t))
			}
		}
	}
}
