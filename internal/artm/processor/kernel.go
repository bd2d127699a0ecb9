package processor

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// rower is implemented by phimatrix.DenseMatrix; it exposes the backing
// float32 row so the vectorized kernel can avoid a per-cell Get() call.
type rower interface {
	Row(i int) []float32
}

// jointPhiScalar multiplies, topic by topic, the φ rows of every token
// participating in a transaction (a transaction of size 1 is the common
// bag-of-words case; size > 1 models a joint multi-modality occurrence).
func jointPhiScalar(get func(row, topic int) float64, rows []int, topics int) []float64 {
	joint := make([]float64, topics)
	for t := 0; t < topics; t++ {
		joint[t] = 1
	}
	for _, r := range rows {
		for t := 0; t < topics; t++ {
			joint[t] *= get(r, t)
		}
	}
	return joint
}

// transactionProbs computes the unnormalized p(t|d,transaction) = θ_t *
// Π_w φ_{w,t} vector and its sum. When the kernel can be vectorized (a
// single-token transaction, a float32 dense Φ, and no ptdw-dependent
// regularizer in play) it multiplies via vek32 instead of a scalar loop.
func transactionProbs(phi interface{ Get(i, t int) float64 }, theta []float64, rows []int, topics int, useVek bool) (p []float64, sum float64) {
	if useVek && len(rows) == 1 {
		if rd, ok := phi.(rower); ok {
			row := rd.Row(rows[0])
			thetaF32 := make([]float32, topics)
			for t, v := range theta {
				thetaF32[t] = float32(v)
			}
			prod := vek32.Mul(thetaF32, row)
			total := vek32.Sum(prod)
			p = make([]float64, topics)
			for t, v := range prod {
				p[t] = float64(v)
			}
			return p, float64(total)
		}
	}

	joint := jointPhiScalar(phi.Get, rows, topics)
	p = make([]float64, topics)
	for t := 0; t < topics; t++ {
		v := theta[t] * joint[t]
		p[t] = v
		sum += v
	}
	return p, sum
}

// logOrFloor returns math32.Log(x) guarded against x<=0, for perplexity
// accumulation where a degenerate transaction must not produce -Inf/NaN.
func logOrFloor(x float64) float64 {
	if x <= 0 {
		return float64(math32.Log(math32.SmallestNonzeroFloat32))
	}
	return float64(math32.Log(float32(x)))
}
