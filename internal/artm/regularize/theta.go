package regularize

import (
	"github.com/artm-core/artm/internal/artm/batch"
)

func uniformTopicSet(names []string) map[string]bool { return topicSet(names) }

// SmoothSparseTheta adds a constant r_t = tau to every topic in Topics (or
// all topics if unset), each pass of the inner loop. Tau>0 smooths, tau<0
// sparsifies, mirroring SmoothSparsePhi's sign convention.
type SmoothSparseTheta struct {
	Tau    float64
	Topics []string
}

func (SmoothSparseTheta) NeedsPtdw() bool { return false }

func (s SmoothSparseTheta) RegularizeTheta(_ *batch.Item, topics []string, theta []float64, _ [][]float64) []float64 {
	set := uniformTopicSet(s.Topics)
	r := make([]float64, len(theta))
	for t, name := range topics {
		if set != nil && !set[name] {
			continue
		}
		r[t] = s.Tau
	}
	return r
}

// TopicSelection pushes θ away from whichever topics currently dominate
// an item, a PLSA-style pressure toward a sparser, more decisive topic
// assignment per document. It reads the raw accumulated θ_new directly
// and needs no per-occurrence ptdw.
type TopicSelection struct {
	Tau float64
}

func (TopicSelection) NeedsPtdw() bool { return false }

func (s TopicSelection) RegularizeTheta(_ *batch.Item, _ []string, theta []float64, _ [][]float64) []float64 {
	r := make([]float64, len(theta))
	for t, v := range theta {
		r[t] = -s.Tau * v
	}
	return r
}

// SmoothPtdw smooths θ toward the per-transaction consensus p(t|d,w)
// distributions computed during the inner loop, rather than toward a
// fixed prior — it needs ptdw and forces the scalar inner-loop path.
type SmoothPtdw struct {
	Tau float64
}

func (SmoothPtdw) NeedsPtdw() bool { return true }

func (s SmoothPtdw) RegularizeTheta(_ *batch.Item, _ []string, theta []float64, ptdw [][]float64) []float64 {
	r := make([]float64, len(theta))
	var count int
	for _, p := range ptdw {
		if p == nil {
			continue
		}
		count++
		for t, v := range p {
			r[t] += v
		}
	}
	if count == 0 {
		return r
	}
	for t := range r {
		r[t] = s.Tau * r[t] / float64(count)
	}
	return r
}

// HierarchySparsing sparsifies a child topic model's θ relative to its
// parent level's θ for the same item, per hierarchical ARTM: r_t = -tau *
// (theta_t - parent_t). With no ParentTheta it degrades to plain
// sparsification (-tau*theta_t).
type HierarchySparsing struct {
	Tau         float64
	ParentTheta []float64
}

func (HierarchySparsing) NeedsPtdw() bool { return false }

func (s HierarchySparsing) RegularizeTheta(_ *batch.Item, _ []string, theta []float64, _ [][]float64) []float64 {
	r := make([]float64, len(theta))
	for t, v := range theta {
		parent := 0.0
		if t < len(s.ParentTheta) {
			parent = s.ParentTheta[t]
		}
		r[t] = -s.Tau * (v - parent)
	}
	return r
}

// TopicSegmentationPtdw rewards the topic each transaction's p(t|d,w)
// distribution is most confident about, biasing θ toward a
// one-topic-per-segment structure over a document's transactions. It
// needs ptdw to find each transaction's argmax topic.
type TopicSegmentationPtdw struct {
	Tau float64
}

func (TopicSegmentationPtdw) NeedsPtdw() bool { return true }

func (s TopicSegmentationPtdw) RegularizeTheta(_ *batch.Item, _ []string, theta []float64, ptdw [][]float64) []float64 {
	r := make([]float64, len(theta))
	for _, p := range ptdw {
		if p == nil {
			continue
		}
		best, bestV := -1, 0.0
		for t, v := range p {
			if best < 0 || v > bestV {
				best, bestV = t, v
			}
		}
		if best >= 0 {
			r[best] += s.Tau
		}
	}
	return r
}
