package regularize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artm-core/artm/internal/artm/ann"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/token"
)

func sampleRefAndN() (ref, n, r *phimatrix.DenseMatrix) {
	tokens := []token.Token{token.New("", "alpha", ""), token.New("", "beta", "")}
	classes := []string{token.DefaultClass, token.DefaultClass}
	topics := []string{"t0", "t1"}
	ref = phimatrix.NewDense(tokens, classes, topics)
	ref.Set(0, 0, 0.8)
	ref.Set(0, 1, 0.2)
	ref.Set(1, 0, 0.3)
	ref.Set(1, 1, 0.7)

	n = phimatrix.NewDense(tokens, classes, topics)
	n.Set(0, 0, 4)
	n.Set(0, 1, 1)
	n.Set(1, 0, 3)
	n.Set(1, 1, 7)

	r = phimatrix.NewDense(tokens, classes, topics)
	return
}

func TestNormalize_ColumnSumsToOnePerModality(t *testing.T) {
	ref, n, r := sampleRefAndN()
	out := phimatrix.NewDense([]token.Token{ref.TokenAt(0), ref.TokenAt(1)}, []string{token.DefaultClass, token.DefaultClass}, ref.TopicNames())
	Normalize(n, r, out)

	// out stores float32, so the non-dyadic quotients are compared after the same rounding.
	assert.InDelta(t, float64(float32(4.0/7.0)), out.Get(0, 0), 1e-9)
	assert.InDelta(t, float64(float32(3.0/7.0)), out.Get(1, 0), 1e-9)
	assert.InDelta(t, 1.0/8.0, out.Get(0, 1), 1e-9)
	assert.InDelta(t, 7.0/8.0, out.Get(1, 1), 1e-9)
}

func TestNormalize_ZeroColumnStaysZero(t *testing.T) {
	ref, _, _ := sampleRefAndN()
	n := phimatrix.NewDense([]token.Token{ref.TokenAt(0), ref.TokenAt(1)}, []string{token.DefaultClass, token.DefaultClass}, ref.TopicNames())
	r := phimatrix.NewDense([]token.Token{ref.TokenAt(0), ref.TokenAt(1)}, []string{token.DefaultClass, token.DefaultClass}, ref.TopicNames())
	out := phimatrix.NewDense([]token.Token{ref.TokenAt(0), ref.TokenAt(1)}, []string{token.DefaultClass, token.DefaultClass}, ref.TopicNames())
	Normalize(n, r, out)
	assert.Equal(t, 0.0, out.Get(0, 0))
	assert.Equal(t, 0.0, out.Get(1, 0))
}

func TestRelativeTau(t *testing.T) {
	assert.Equal(t, 2.0, RelativeTau(2.0, 0, 100))
	assert.Equal(t, 200.0, RelativeTau(2.0, 1, 100))
	assert.InDelta(t, 101.0, RelativeTau(2.0, 0.5, 100), 1e-9)
}

func TestSmoothSparsePhi_RestrictsToTopics(t *testing.T) {
	ref, n, r := sampleRefAndN()
	s := SmoothSparsePhi{Tau: 0.5, Topics: []string{"t0"}}
	s.RegularizePhi(n, ref, r)
	assert.InDelta(t, 0.5, r.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.5, r.Get(1, 0), 1e-9)
	assert.Equal(t, 0.0, r.Get(0, 1))
}

func TestDecorrelatorPhi_PenalizesSharedMass(t *testing.T) {
	ref, n, r := sampleRefAndN()
	d := DecorrelatorPhi{Tau: 1.0}
	d.RegularizePhi(n, ref, r)
	// token 0: t0: phi=0.8, other=0.2 -> -1*0.8*0.2 ≈ -0.16, computed from the
	// float32-stored φ values and stored back as float32.
	assert.InDelta(t, float64(float32(-ref.Get(0, 0)*ref.Get(0, 1))), r.Get(0, 0), 1e-9)
}

func TestLabelRegularizationPhi_OnlyAffectsMappedClass(t *testing.T) {
	ref, n, r := sampleRefAndN()
	l := LabelRegularizationPhi{Tau: 2.0, TopicOfClass: map[string]string{token.DefaultClass: "t0"}}
	l.RegularizePhi(n, ref, r)
	assert.InDelta(t, 2.0*ref.Get(0, 0), r.Get(0, 0), 1e-9) // φ=0.8 as stored in float32
	assert.Equal(t, 0.0, r.Get(0, 1))
}

func TestBitermsPhi_ContributesSymmetrically(t *testing.T) {
	ref, n, r := sampleRefAndN()
	b := BitermsPhi{Tau: 1.0, Cooc: []token.CoocEntry{{First: 0, Second: 1, Value: 0.5}}}
	b.RegularizePhi(n, ref, r)
	assert.InDelta(t, 0.5*ref.Get(1, 0), r.Get(0, 0), 1e-9)
	assert.InDelta(t, 0.5*ref.Get(0, 0), r.Get(1, 0), 1e-9)
}

func TestSpecifiedSparsePhi_SparsifiesBelowCutoff(t *testing.T) {
	ref, n, r := sampleRefAndN()
	s := SpecifiedSparsePhi{Tau: 1.0, KeepFraction: 0.5}
	s.RegularizePhi(n, ref, r)
	// topic t0 values: token0=0.8 (kept), token1=0.3 (sparsified)
	assert.Equal(t, 0.0, r.Get(0, 0))
	assert.InDelta(t, -n.Get(1, 0), r.Get(1, 0), 1e-9)
}

func TestImproveCoherencePhi_PullsFromNeighbors(t *testing.T) {
	ref, n, r := sampleRefAndN()
	idx, err := ann.Build(ref, ann.Config{})
	require.NoError(t, err)
	c := ImproveCoherencePhi{Tau: 1.0, K: 1, Index: idx}
	c.RegularizePhi(n, ref, r)
	var total float64
	r.RowNonzero(0, func(_ int, v float64) { total += v })
	assert.NotZero(t, total)
}

func TestSmoothSparseTheta_AddsConstantToSelectedTopics(t *testing.T) {
	s := SmoothSparseTheta{Tau: 0.1, Topics: []string{"t1"}}
	r := s.RegularizeTheta(&batch.Item{}, []string{"t0", "t1"}, []float64{1, 1}, nil)
	assert.Equal(t, 0.0, r[0])
	assert.InDelta(t, 0.1, r[1], 1e-9)
}

func TestTopicSelection_PushesAwayFromCurrentMass(t *testing.T) {
	s := TopicSelection{Tau: 0.5}
	r := s.RegularizeTheta(&batch.Item{}, nil, []float64{2, 4}, nil)
	assert.InDelta(t, -1.0, r[0], 1e-9)
	assert.InDelta(t, -2.0, r[1], 1e-9)
}

func TestSmoothPtdw_AveragesAcrossTransactions(t *testing.T) {
	s := SmoothPtdw{Tau: 1.0}
	ptdw := [][]float64{{0.8, 0.2}, {0.4, 0.6}}
	r := s.RegularizeTheta(&batch.Item{}, nil, []float64{0, 0}, ptdw)
	assert.InDelta(t, 0.6, r[0], 1e-9)
	assert.InDelta(t, 0.4, r[1], 1e-9)
	assert.True(t, s.NeedsPtdw())
}

func TestHierarchySparsing_PullsTowardParent(t *testing.T) {
	s := HierarchySparsing{Tau: 1.0, ParentTheta: []float64{0.5, 0.5}}
	r := s.RegularizeTheta(&batch.Item{}, nil, []float64{0.8, 0.2}, nil)
	assert.InDelta(t, -0.3, r[0], 1e-9)
	assert.InDelta(t, 0.3, r[1], 1e-9)
}

func TestTopicSegmentationPtdw_RewardsArgmaxPerTransaction(t *testing.T) {
	s := TopicSegmentationPtdw{Tau: 1.0}
	ptdw := [][]float64{{0.9, 0.1}, {0.2, 0.8}}
	r := s.RegularizeTheta(&batch.Item{}, nil, []float64{0, 0}, ptdw)
	assert.InDelta(t, 1.0, r[0], 1e-9)
	assert.InDelta(t, 1.0, r[1], 1e-9)
	assert.True(t, s.NeedsPtdw())
}
