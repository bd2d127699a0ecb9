package score

import (
	"github.com/artm-core/artm/internal/artm/ann"
	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// TopicKernel reports, per topic, the kernel {w : p(t|w) >= Threshold}
// where p(t|w) = φ_{w,t} / Σ_t' φ_{w,t'}, plus the kernel's size, purity
// (Σ φ over the kernel) and contrast (purity/size). It is Φ-only. When
// Index is set, it also reports coherence: the average token-affinity
// distance from each kernel token to its nearest in-kernel neighbor, standing in for a cooc-dictionary lookup the
// token ANN index already makes available (see §4.6a).
type TopicKernel struct {
	Threshold float64
	Index     *ann.Index
}

func (TopicKernel) Name() string                     { return "TopicKernel" }
func (TopicKernel) CalculateScore(BatchPartial) any   { return nil }
func (TopicKernel) AppendScore(cumulative, _ any) any { return cumulative }

// TopicKernelStats is the per-topic kernel summary.
type TopicKernelStats struct {
	Size       int
	Purity     float64
	Contrast   float64
	Coherence  float64 // 0 when s.Index is nil or the kernel has under 2 tokens
}

// TopicKernelValue maps topic name to its kernel stats, plus the
// collection-wide average kernel size.
type TopicKernelValue struct {
	PerTopic    map[string]TopicKernelStats
	AverageSize float64
}

func (s TopicKernel) Finalize(_ any, phi phimatrix.Matrix) any {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = 0.5
	}

	rowSum := make([]float64, phi.TokenSize())
	for i := 0; i < phi.TokenSize(); i++ {
		phi.RowNonzero(i, func(_ int, v float64) { rowSum[i] += v })
	}

	out := make(map[string]TopicKernelStats, phi.TopicSize())
	var totalSize float64
	for t := 0; t < phi.TopicSize(); t++ {
		var size int
		var purity float64
		var kernel []int
		for i := 0; i < phi.TokenSize(); i++ {
			if rowSum[i] <= 0 {
				continue
			}
			pTgivenW := phi.Get(i, t) / rowSum[i]
			if pTgivenW >= threshold {
				size++
				purity += phi.Get(i, t)
				kernel = append(kernel, i)
			}
		}
		contrast := 0.0
		if size > 0 {
			contrast = purity / float64(size)
		}
		out[phi.TopicName(t)] = TopicKernelStats{
			Size:      size,
			Purity:    purity,
			Contrast:  contrast,
			Coherence: s.coherence(phi, kernel),
		}
		totalSize += float64(size)
	}

	avg := 0.0
	if phi.TopicSize() > 0 {
		avg = totalSize / float64(phi.TopicSize())
	}
	return TopicKernelValue{PerTopic: out, AverageSize: avg}
}

// coherence averages, over the kernel's own tokens, the token-affinity
// distance to their nearest neighbor within the kernel — a proxy for
// cooc-dictionary coherence built from the same index ImproveCoherencePhi
// and NetPlsaPhi already consume.
func (s TopicKernel) coherence(phi phimatrix.Matrix, kernel []int) float64 {
	if s.Index == nil || len(kernel) < 2 {
		return 0
	}
	inKernel := make(map[int]bool, len(kernel))
	for _, i := range kernel {
		inKernel[i] = true
	}

	var sum float64
	var n int
	for _, i := range kernel {
		for _, nb := range s.Index.Neighbors(phi, i, len(kernel)-1) {
			if !inKernel[nb.Row] {
				continue
			}
			sum += nb.Distance
			n++
			break // nearest in-kernel neighbor only
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
