package score

import (
	"sort"

	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// TopTokens reports, per topic, the top-K tokens by φ_{w,t} (optionally
// weighted by a coherence dictionary's per-token Value). It is Φ-only:
// Finalize scans the committed matrix directly.
type TopTokens struct {
	K       int
	Weight  map[uint64]float64 // optional token-hash -> coherence weight
}

func (TopTokens) Name() string                     { return "TopTokens" }
func (TopTokens) CalculateScore(BatchPartial) any   { return nil }
func (TopTokens) AppendScore(cumulative, _ any) any { return cumulative }

// TokenWeight pairs a token's keyword with its ranking weight for one
// topic's top-K list.
type TokenWeight struct {
	Keyword string
	ClassID string
	Value   float64
}

// TopTokensValue maps topic name to its top-K token list, descending by
// Value.
type TopTokensValue map[string][]TokenWeight

func (s TopTokens) Finalize(_ any, phi phimatrix.Matrix) any {
	k := s.K
	if k <= 0 {
		k = 10
	}
	out := make(TopTokensValue, phi.TopicSize())
	for t := 0; t < phi.TopicSize(); t++ {
		list := make([]TokenWeight, 0, phi.TokenSize())
		for i := 0; i < phi.TokenSize(); i++ {
			v := phi.Get(i, t)
			if w, ok := s.Weight[phi.TokenAt(i).Hash()]; ok {
				v *= w
			}
			list = append(list, TokenWeight{
				Keyword: phi.TokenAt(i).Keyword,
				ClassID: phi.ClassAt(i),
				Value:   v,
			})
		}
		sort.Slice(list, func(a, b int) bool { return list[a].Value > list[b].Value })
		if len(list) > k {
			list = list[:k]
		}
		out[phi.TopicName(t)] = list
	}
	return out
}
