// Package regularize implements the Phi regularizers (operating on the
// accumulated N matrix and a reference Φ snapshot), the Θ regularizers
// (implementing processor.ThetaRegularizer), and the column-normalization
// pipeline that turns N+R into a new Φ.
package regularize

import "github.com/artm-core/artm/internal/artm/phimatrix"

// PhiRegularizer contributes additively to the R matrix ahead of
// normalization. It must only call r.Increase — it never mutates n or
// ref, both of which are shared read-only state during a training step.
type PhiRegularizer interface {
	Name() string
	RegularizePhi(n, ref phimatrix.Matrix, r phimatrix.Matrix)
}

// Normalize computes φ_{w,t} = max(n_{w,t}+r_{w,t}, 0) / s into out, where
// s sums max(n+r,0) over the topic column restricted to each row's own
// modality (class_id) — tokens of different modalities never share a
// normalization denominator. A column with s<=0 is left at zero.
func Normalize(n, r, out phimatrix.Matrix) {
	topics := n.TopicSize()
	classSums := make(map[string][]float64)

	for i := 0; i < n.TokenSize(); i++ {
		cls := n.ClassAt(i)
		sums, ok := classSums[cls]
		if !ok {
			sums = make([]float64, topics)
			classSums[cls] = sums
		}
		for t := 0; t < topics; t++ {
			v := n.Get(i, t) + r.Get(i, t)
			if v > 0 {
				sums[t] += v
			}
		}
	}

	for i := 0; i < n.TokenSize(); i++ {
		sums := classSums[n.ClassAt(i)]
		for t := 0; t < topics; t++ {
			v := n.Get(i, t) + r.Get(i, t)
			if v < 0 {
				v = 0
			}
			s := sums[t]
			if s <= 0 {
				out.Set(i, t, 0)
				continue
			}
			out.Set(i, t, v/s)
		}
	}
}

// RelativeTau blends a configured tau with a dataset-scale term so the
// regularization strength does not need re-tuning as collection size
// changes: gamma=0 uses tau as-is, gamma=1 uses tau*dataScale, and values
// in between blend linearly.
func RelativeTau(tau, gamma, dataScale float64) float64 {
	if gamma <= 0 {
		return tau
	}
	if gamma >= 1 {
		return tau * dataScale
	}
	return tau*(1-gamma) + tau*dataScale*gamma
}

func topicSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func classAllowed(set map[string]bool, class string) bool {
	return set == nil || set[class]
}
