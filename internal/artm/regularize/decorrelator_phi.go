package regularize

import "github.com/artm-core/artm/internal/artm/phimatrix"

// DecorrelatorPhi adds r_{w,t} -= tau * φ_{w,t} * Σ_{t'≠t} φ_{w,t'},
// restricted to Topics if set, pushing topics to specialize on disjoint
// tokens rather than sharing mass.
type DecorrelatorPhi struct {
	Tau    float64
	Topics []string
}

func (DecorrelatorPhi) Name() string { return "DecorrelatorPhi" }

func (d DecorrelatorPhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	topics := topicSet(d.Topics)
	T := ref.TopicSize()

	for i := 0; i < ref.TokenSize(); i++ {
		var rowSum float64
		ref.RowNonzero(i, func(_ int, v float64) { rowSum += v })

		for t := 0; t < T; t++ {
			if topics != nil && !topics[ref.TopicName(t)] {
				continue
			}
			phiWT := ref.Get(i, t)
			other := rowSum - phiWT
			r.Increase(i, t, -d.Tau*phiWT*other)
		}
	}
}
