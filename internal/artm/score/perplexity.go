package score

import (
	"math"

	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// Perplexity is exp(-Σ log p(d,w) / Σ n) over the items processed in a
// pass, using the per-item log-likelihood/weight the processor already
// accumulated on its final inner pass — no second pass over Φ/Θ is needed.
type Perplexity struct{}

func (Perplexity) Name() string { return "Perplexity" }

type perplexityPartial struct {
	logLikelihood float64
	tokenWeight   float64
}

func (Perplexity) CalculateScore(bp BatchPartial) any {
	p := perplexityPartial{}
	for _, it := range bp.Items {
		p.logLikelihood += it.LogLikelihood
		p.tokenWeight += it.TokenWeight
	}
	return p
}

func (Perplexity) AppendScore(cumulative, partial any) any {
	c, _ := cumulative.(perplexityPartial)
	p := partial.(perplexityPartial)
	c.logLikelihood += p.logLikelihood
	c.tokenWeight += p.tokenWeight
	return c
}

// PerplexityValue is the finalized score value.
type PerplexityValue struct {
	Value       float64
	TokenWeight float64
}

func (Perplexity) Finalize(cumulative any, _ phimatrix.Matrix) any {
	c, _ := cumulative.(perplexityPartial)
	if c.tokenWeight <= 0 {
		return PerplexityValue{Value: math.Inf(1)}
	}
	return PerplexityValue{
		Value:       math.Exp(-c.logLikelihood / c.tokenWeight),
		TokenWeight: c.tokenWeight,
	}
}
