package regularize

import "github.com/artm-core/artm/internal/artm/phimatrix"

// SmoothSparsePhi adds r_{w,t} += tau * dictWeight(w), restricted to
// Topics/ClassIDs if set. Tau>0 smooths mass toward the dictionary
// weighting; tau<0 sparsifies it away.
type SmoothSparsePhi struct {
	Tau        float64
	Topics     []string
	ClassIDs   []string
	DictWeight map[uint64]float64 // token hash -> weight; absent defaults to 1
}

func (SmoothSparsePhi) Name() string { return "SmoothSparsePhi" }

func (s SmoothSparsePhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	topics := topicSet(s.Topics)
	classes := topicSet(s.ClassIDs)

	for i := 0; i < ref.TokenSize(); i++ {
		if !classAllowed(classes, ref.ClassAt(i)) {
			continue
		}
		w := 1.0
		if s.DictWeight != nil {
			if dw, ok := s.DictWeight[ref.TokenAt(i).Hash()]; ok {
				w = dw
			}
		}
		for t := 0; t < ref.TopicSize(); t++ {
			if topics != nil && !topics[ref.TopicName(t)] {
				continue
			}
			r.Increase(i, t, s.Tau*w)
		}
	}
}
