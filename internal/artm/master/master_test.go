package master

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/config"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/regularize"
	"github.com/artm-core/artm/internal/artm/score"
	"github.com/artm-core/artm/internal/artm/token"
)

func sampleDictionary() *token.Dictionary {
	d := token.NewDictionary("vocab")
	d.Coll.Add(token.New("", "cat", ""))
	d.Coll.Add(token.New("", "dog", ""))
	d.Coll.Add(token.New("", "fish", ""))
	d.Entries = []token.Entry{
		{Tok: token.New("", "cat", ""), TF: 3, DF: 2},
		{Tok: token.New("", "dog", ""), TF: 2, DF: 2},
		{Tok: token.New("", "fish", ""), TF: 1, DF: 1},
	}
	return d
}

func sampleBatchOf(id string, tokenWeights map[string]float64) *batch.Batch {
	b := batch.New()
	b.ID = id
	b.TransactionTypenames = []string{"default"}

	var tokens []token.Token
	var classes []string
	var tokenIDs []int
	var weights []float64
	i := 0
	for kw, w := range tokenWeights {
		tokens = append(tokens, token.New("", kw, ""))
		classes = append(classes, token.DefaultClass)
		tokenIDs = append(tokenIDs, i)
		weights = append(weights, w)
		i++
	}
	b.Tokens = tokens
	b.ClassID = classes
	b.Items = []batch.Item{{
		ID:                    id + "-item0",
		Title:                 "doc-" + id,
		TokenID:               tokenIDs,
		TokenWeight:           weights,
		TransactionStartIndex: []int{0, len(tokenIDs)},
		TransactionTypenameID: []int{0},
	}}
	return b
}

func newTestMaster(t *testing.T) *Master {
	t.Helper()
	cfg := config.Default()
	cfg.TopicNames = []string{"t0", "t1"}
	cfg.NumProcessors = 1
	cfg.NumDocumentPasses = 5
	m := New(cfg, Options{})
	require.NoError(t, m.InitializeModel(sampleDictionary(), cfg.TopicNames, 42))
	return m
}

func TestInitializeModel_ColumnsSumToOnePerModality(t *testing.T) {
	m := newTestMaster(t)
	phi, err := m.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)

	for t2 := 0; t2 < phi.TopicSize(); t2++ {
		var sum float64
		for i := 0; i < phi.TokenSize(); i++ {
			sum += phi.Get(i, t2)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestFitOffline_PreservesColumnStochasticity(t *testing.T) {
	m := newTestMaster(t)
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 3, "dog": 1})
	b2 := sampleBatchOf("b2", map[string]float64{"dog": 2, "fish": 4})

	require.NoError(t, m.FitOffline([]*batch.Batch{b1, b2}, 2))

	phi, err := m.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)
	for t2 := 0; t2 < phi.TopicSize(); t2++ {
		var sum float64
		for i := 0; i < phi.TokenSize(); i++ {
			sum += phi.Get(i, t2)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestTransform_ZeroPassesYieldsUniformTheta(t *testing.T) {
	m := newTestMaster(t)
	m.cfg.NumDocumentPasses = 0
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 1})

	th, err := m.Transform([]*batch.Batch{b1})
	require.NoError(t, err)
	require.Equal(t, 1, th.ItemSize())
	for t2 := 0; t2 < th.TopicSize(); t2++ {
		assert.InDelta(t, 0.5, th.Get(0, t2), 1e-9)
	}
	assert.Equal(t, "doc-b1", th.ItemTitle(0))
}

func TestOverwriteModel_RejectsMismatchedTopicAxis(t *testing.T) {
	m := newTestMaster(t)
	phi, err := m.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)

	badTokens := []token.Token{phi.TokenAt(0)}
	badClasses := []string{phi.ClassAt(0)}
	bad := phimatrix.NewDense(badTokens, badClasses, []string{"only-one-topic"})

	err = m.OverwriteModel(m.cfg.PwtName, bad)
	assert.Error(t, err)
}

func TestGetScore_NotFoundBeforeAnyFit(t *testing.T) {
	m := newTestMaster(t)
	m.Scores().Register(score.Perplexity{})
	_, err := m.GetScore("Perplexity")
	assert.Error(t, err)
}

func TestFitOffline_PopulatesScoreArray(t *testing.T) {
	m := newTestMaster(t)
	m.Scores().Register(score.Perplexity{})
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 2, "dog": 1})

	require.NoError(t, m.FitOffline([]*batch.Batch{b1}, 1))
	arr := m.GetScoreArray("Perplexity")
	assert.Len(t, arr, 1)

	m.ClearScoreArrayCache()
	assert.Empty(t, m.GetScoreArray("Perplexity"))
}

func TestAsyncProcessBatches_AwaitOperationCompletes(t *testing.T) {
	m := newTestMaster(t)
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 1, "dog": 1})

	opID, err := m.AsyncProcessBatches([]*batch.Batch{b1}, m.cfg.PwtName, "nwt_hat_0")
	require.NoError(t, err)

	done, err := m.AwaitOperation(opID, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, done)

	m.mu.RLock()
	_, ok := m.nwt["nwt_hat_0"]
	m.mu.RUnlock()
	assert.True(t, ok)
}

func TestAwaitOperation_UnknownIDReturnsNotFound(t *testing.T) {
	m := newTestMaster(t)
	_, err := m.AwaitOperation("does-not-exist", time.Millisecond)
	assert.Error(t, err)
}

func TestMergeModelThenNormalize_ProducesColumnStochasticResult(t *testing.T) {
	m := newTestMaster(t)
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 1, "dog": 1})

	opID, err := m.AsyncProcessBatches([]*batch.Batch{b1}, m.cfg.PwtName, "nwt_hat_1")
	require.NoError(t, err)
	_, err = m.AwaitOperation(opID, 2*time.Second)
	require.NoError(t, err)

	require.NoError(t, m.MergeModel([]NamedSource{{Name: "nwt_hat_1", Weight: 1}}, "merged", m.cfg.TopicNames, nil))
	require.NoError(t, m.NormalizeModel("merged", "merged"))

	phi, err := m.GetTopicModel("merged", ProjectionArgs{})
	require.NoError(t, err)
	for t2 := 0; t2 < phi.TopicSize(); t2++ {
		var sum float64
		for i := 0; i < phi.TokenSize(); i++ {
			sum += phi.Get(i, t2)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestGetMasterComponentInfo_ReportsCountersAndLogs(t *testing.T) {
	m := newTestMaster(t)
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 1})
	require.NoError(t, m.FitOffline([]*batch.Batch{b1}, 1))

	info := m.GetMasterComponentInfo()
	assert.Equal(t, int64(1), info.ItemsProcessed)
	assert.NotEmpty(t, info.RecentLogs)
	assert.Contains(t, info.ModelNames, m.cfg.PwtName)
}

func TestFitOffline_RejectsZeroPasses(t *testing.T) {
	m := newTestMaster(t)
	err := m.FitOffline(nil, 0)
	assert.Error(t, err)
}

func TestFitOffline_WithSmoothSparsePhi_StaysColumnStochastic(t *testing.T) {
	m := newTestMaster(t)
	m.phiRegularizers = []regularize.PhiRegularizer{regularize.SmoothSparsePhi{Tau: 0.1}}
	b1 := sampleBatchOf("b1", map[string]float64{"cat": 2, "dog": 2, "fish": 2})

	require.NoError(t, m.FitOffline([]*batch.Batch{b1}, 1))
	phi, err := m.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)
	for t2 := 0; t2 < phi.TopicSize(); t2++ {
		var sum float64
		for i := 0; i < phi.TokenSize(); i++ {
			sum += phi.Get(i, t2)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

// TestFitOnline_TwoCheckpointsBlendPhiByDecayAndApplyWeight exercises the
// Φ_new = decayWeight[k]·Φ_old + applyWeight[k]·normalize(N_interval) fold
// across two checkpoints. Checkpoint 1 (apply=1, decay=0) over batches[0:2]
// commits exactly what one unregularized FitOffline pass from the same seed
// would, so that pass is used as an independent reference for Φ_old at
// checkpoint 2; likewise checkpoint 2's normalize(N_interval) is reproduced
// by one FitOffline pass over batches[2:5] starting from that reference.
func TestFitOnline_TwoCheckpointsBlendPhiByDecayAndApplyWeight(t *testing.T) {
	cfg := config.Default()
	cfg.TopicNames = []string{"t0", "t1"}
	cfg.NumProcessors = 1
	cfg.NumDocumentPasses = 3
	dict := sampleDictionary()

	b1 := sampleBatchOf("b1", map[string]float64{"cat": 3, "dog": 1})
	b2 := sampleBatchOf("b2", map[string]float64{"dog": 2, "fish": 1})
	b3 := sampleBatchOf("b3", map[string]float64{"cat": 1, "fish": 2})
	b4 := sampleBatchOf("b4", map[string]float64{"dog": 3})
	b5 := sampleBatchOf("b5", map[string]float64{"cat": 2, "dog": 1, "fish": 1})
	batches := []*batch.Batch{b1, b2, b3, b4, b5}

	ref := New(cfg, Options{})
	require.NoError(t, ref.InitializeModel(dict, cfg.TopicNames, 42))
	require.NoError(t, ref.FitOffline([]*batch.Batch{b1, b2}, 1))
	phiOld, err := ref.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)

	refInterval := New(cfg, Options{})
	require.NoError(t, refInterval.InitializeModel(dict, cfg.TopicNames, 42))
	require.NoError(t, refInterval.OverwriteModel(cfg.PwtName, phiOld))
	require.NoError(t, refInterval.FitOffline([]*batch.Batch{b3, b4, b5}, 1))
	normalizedInterval, err := refInterval.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)

	m := New(cfg, Options{})
	require.NoError(t, m.InitializeModel(dict, cfg.TopicNames, 42))
	_, err = m.FitOnline(batches, []int{2, 5}, []float64{1.0, 0.5}, []float64{0.0, 0.5}, false)
	require.NoError(t, err)

	got, err := m.GetTopicModel("", ProjectionArgs{})
	require.NoError(t, err)
	require.Equal(t, phiOld.TokenSize(), got.TokenSize())

	for tk := 0; tk < got.TopicSize(); tk++ {
		for i := 0; i < got.TokenSize(); i++ {
			// Φ cells are stored as float32, so the blend is rounded the same way.
			want := float64(float32(0.5*phiOld.Get(i, tk) + 0.5*normalizedInterval.Get(i, tk)))
			assert.InDelta(t, want, got.Get(i, tk), 1e-9)
		}
	}
}
