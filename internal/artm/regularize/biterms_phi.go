package regularize

import (
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/token"
)

// BitermsPhi regularizes using an explicit co-occurrence (biterm) table
// instead of a learned neighbor graph: each CoocEntry pairs two PhiMatrix
// row indices with an observed co-occurrence Value, and contributes mass
// symmetrically between them: r_{w1,t} += tau*value*φ_{w2,t} and
// vice versa.
type BitermsPhi struct {
	Tau  float64
	Cooc []token.CoocEntry
}

func (BitermsPhi) Name() string { return "BitermsPhi" }

func (b BitermsPhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	T := ref.TopicSize()
	for _, c := range b.Cooc {
		if c.First < 0 || c.First >= ref.TokenSize() || c.Second < 0 || c.Second >= ref.TokenSize() {
			continue
		}
		for t := 0; t < T; t++ {
			r.Increase(c.First, t, b.Tau*c.Value*ref.Get(c.Second, t))
			r.Increase(c.Second, t, b.Tau*c.Value*ref.Get(c.First, t))
		}
	}
}
