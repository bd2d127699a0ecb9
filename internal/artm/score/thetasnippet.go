package score

import "github.com/artm-core/artm/internal/artm/phimatrix"

// ThetaSnippet reports the θ vectors of the first Limit items seen in the
// pass, in processing order.
type ThetaSnippet struct {
	Limit int
}

func (ThetaSnippet) Name() string { return "ThetaSnippet" }

// ThetaSnippetEntry pairs an item id with its θ row.
type ThetaSnippetEntry struct {
	ItemID string
	Theta  []float64
}

func (s ThetaSnippet) CalculateScore(bp BatchPartial) any {
	limit := s.Limit
	if limit <= 0 {
		limit = 10
	}
	out := make([]ThetaSnippetEntry, 0, len(bp.Items))
	for _, it := range bp.Items {
		if len(out) >= limit {
			break
		}
		out = append(out, ThetaSnippetEntry{ItemID: it.ItemID, Theta: append([]float64(nil), it.Theta...)})
	}
	return out
}

func (s ThetaSnippet) AppendScore(cumulative, partial any) any {
	limit := s.Limit
	if limit <= 0 {
		limit = 10
	}
	c, _ := cumulative.([]ThetaSnippetEntry)
	p, _ := partial.([]ThetaSnippetEntry)
	if len(c) >= limit {
		return c
	}
	remaining := limit - len(c)
	if remaining > len(p) {
		remaining = len(p)
	}
	return append(c, p[:remaining]...)
}

func (ThetaSnippet) Finalize(cumulative any, _ phimatrix.Matrix) any {
	c, _ := cumulative.([]ThetaSnippetEntry)
	return c
}
