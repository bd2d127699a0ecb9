package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/processor"
	"github.com/artm-core/artm/internal/artm/token"
)

func samplePhi() *phimatrix.DenseMatrix {
	tokens := []token.Token{token.New("", "alpha", ""), token.New("", "beta", "")}
	classes := []string{token.DefaultClass, token.DefaultClass}
	topics := []string{"t0", "t1"}
	phi := phimatrix.NewDense(tokens, classes, topics)
	phi.Set(0, 0, 0.9)
	phi.Set(0, 1, 0.1)
	phi.Set(1, 0, 0.2)
	phi.Set(1, 1, 0.8)
	return phi
}

func TestEngine_PerplexityAccumulatesAcrossBatches(t *testing.T) {
	e := NewEngine()
	e.Register(Perplexity{})

	bp1 := BatchPartial{Items: []processor.Result{{LogLikelihood: -2, TokenWeight: 2}}}
	bp2 := BatchPartial{Items: []processor.Result{{LogLikelihood: -3, TokenWeight: 3}}}
	e.Accumulate(bp1)
	e.Accumulate(bp2)

	results := e.FinalizeAll(samplePhi())
	pv := results["Perplexity"].(PerplexityValue)
	assert.InDelta(t, math.Exp(5.0/5.0), pv.Value, 1e-9)

	arr := e.Array("Perplexity")
	assert.Len(t, arr, 1)
}

func TestEngine_ClearScoreCacheResetsCumulativeNotArray(t *testing.T) {
	e := NewEngine()
	e.Register(Perplexity{})
	e.Accumulate(BatchPartial{Items: []processor.Result{{LogLikelihood: -1, TokenWeight: 1}}})
	e.FinalizeAll(samplePhi())

	e.ClearScoreCache()
	e.Accumulate(BatchPartial{Items: []processor.Result{{LogLikelihood: -2, TokenWeight: 1}}})
	e.FinalizeAll(samplePhi())

	arr := e.Array("Perplexity")
	require.Len(t, arr, 2)
	assert.NotEqual(t, arr[0], arr[1])
}

func TestEngine_ClearScoreArrayCache(t *testing.T) {
	e := NewEngine()
	e.Register(Perplexity{})
	e.Accumulate(BatchPartial{Items: []processor.Result{{LogLikelihood: -1, TokenWeight: 1}}})
	e.FinalizeAll(samplePhi())
	require.Len(t, e.Array("Perplexity"), 1)

	e.ClearScoreArrayCache()
	assert.Empty(t, e.Array("Perplexity"))
}

func TestSparsityPhi_CountsBelowEps(t *testing.T) {
	s := SparsityPhi{Eps: 0.15}
	v := s.Finalize(nil, samplePhi()).(SparsityValue)
	assert.Equal(t, 4, v.TotalCount)
	assert.Equal(t, 1, v.ZeroCount) // only (0,1)=0.1 <= 0.15
}

func TestSparsityTheta_AccumulatesAcrossBatches(t *testing.T) {
	s := SparsityTheta{Eps: 0.05}
	e := NewEngine()
	e.Register(s)
	e.Accumulate(BatchPartial{Items: []processor.Result{{Theta: []float64{0.0, 1.0}}}})
	e.Accumulate(BatchPartial{Items: []processor.Result{{Theta: []float64{0.5, 0.5}}}})
	results := e.FinalizeAll(samplePhi())
	v := results["SparsityTheta"].(SparsityValue)
	assert.Equal(t, 4, v.TotalCount)
	assert.Equal(t, 1, v.ZeroCount)
}

func TestTopTokens_RanksDescending(t *testing.T) {
	s := TopTokens{K: 2}
	v := s.Finalize(nil, samplePhi()).(TopTokensValue)
	t0 := v["t0"]
	require.Len(t, t0, 2)
	assert.Equal(t, "alpha", t0[0].Keyword)
	assert.Equal(t, "beta", t0[1].Keyword)
}

func TestTopicKernel_ComputesSizePurityContrast(t *testing.T) {
	s := TopicKernel{Threshold: 0.5}
	v := s.Finalize(nil, samplePhi()).(TopicKernelValue)
	t0 := v.PerTopic["t0"]
	assert.Equal(t, 1, t0.Size) // alpha: p(t0|alpha)=0.9/1.0 >= 0.5
	assert.InDelta(t, float64(float32(0.9)), t0.Purity, 1e-9) // Φ stores float32
	assert.InDelta(t, float64(float32(0.9)), t0.Contrast, 1e-9)
}

func TestThetaSnippet_CapsAtLimitAcrossBatches(t *testing.T) {
	s := ThetaSnippet{Limit: 2}
	e := NewEngine()
	e.Register(s)
	e.Accumulate(BatchPartial{Items: []processor.Result{{ItemID: "a", Theta: []float64{1, 0}}}})
	e.Accumulate(BatchPartial{Items: []processor.Result{{ItemID: "b", Theta: []float64{0, 1}}, {ItemID: "c", Theta: []float64{1, 1}}}})
	results := e.FinalizeAll(samplePhi())
	v := results["ThetaSnippet"].([]ThetaSnippetEntry)
	require.Len(t, v, 2)
	assert.Equal(t, "a", v[0].ItemID)
	assert.Equal(t, "b", v[1].ItemID)
}

func TestItemsProcessed_CountsItemsBatchesWeight(t *testing.T) {
	e := NewEngine()
	e.Register(ItemsProcessed{})
	b := &batch.Batch{Items: []batch.Item{{TokenWeight: []float64{1, 2}}}}
	e.Accumulate(BatchPartial{Batch: b, Items: []processor.Result{{TokenWeight: 2.5}}})
	results := e.FinalizeAll(samplePhi())
	v := results["ItemsProcessed"].(ItemsProcessedValue)
	assert.Equal(t, 1, v.Items)
	assert.Equal(t, 1, v.Batches)
	assert.InDelta(t, 3.0, v.RawWeight, 1e-9)
	assert.InDelta(t, 2.5, v.ScaledWeight, 1e-9)
}

func TestClassPrecision_MatchesGoldClassArgmax(t *testing.T) {
	s := ClassPrecision{GoldClassID: "@gold", TopicClass: map[string]string{"t0": "cat"}}
	b := &batch.Batch{
		Tokens:  []token.Token{token.New("@gold", "cat", "")},
		ClassID: []string{"@gold"},
		Items:   []batch.Item{{ID: "d1", TokenID: []int{0}}},
	}
	bp := BatchPartial{
		Batch:      b,
		Items:      []processor.Result{{ItemID: "d1", Theta: []float64{0.9, 0.1}}},
		TopicNames: []string{"t0", "t1"},
	}
	v := s.CalculateScore(bp).(ClassPrecisionValue)
	assert.Equal(t, 1, v.Evaluated)
	assert.Equal(t, 1, v.Correct)

	final := s.Finalize(v, samplePhi()).(ClassPrecisionValue)
	assert.InDelta(t, 1.0, final.Value, 1e-9)
}
