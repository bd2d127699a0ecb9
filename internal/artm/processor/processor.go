package processor

import (
	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// BatchIndex pre-resolves a batch's local token ids to Φ row indices once
// per batch, so the inner loop never re-hashes a token. A -1 entry marks a
// token absent from the current Φ (unknown token/modality); occurrences of
// it are skipped, contributing nothing, per §4.3.
type BatchIndex struct {
	PhiRow []int // parallel to Batch.Tokens
}

// ResolveBatchIndex builds the BatchIndex for b against phi.
func ResolveBatchIndex(phi phimatrix.Matrix, b *batch.Batch) BatchIndex {
	rows := make([]int, len(b.Tokens))
	for i, tok := range b.Tokens {
		if r, ok := phi.TokenRow(tok); ok {
			rows[i] = r
		} else {
			rows[i] = -1
		}
	}
	return BatchIndex{PhiRow: rows}
}

// Result is one item's processor output: its converged θ row plus the
// log-likelihood/weight accumulated on the final inner pass, which the
// score engine's Perplexity score consumes directly instead of
// re-deriving p(t|d,w) from scratch.
type Result struct {
	ItemID        string
	Theta         []float64
	LogLikelihood float64
	TokenWeight   float64
}

// ProcessItem runs the inner E-step for one item against the given Φ
// snapshot, accumulating the item's contribution into n (a fresh,
// worker-owned N shard) on the final pass. initTheta, when non-nil and
// cfg.ReuseTheta is set, seeds θ_d instead of starting uniform.
//
// A malformed item (failing Item.Validate) is reported to the caller, who
// is expected to drop it and continue with the rest of the batch rather
// than fail the whole batch.
func ProcessItem(phi phimatrix.Matrix, n phimatrix.Matrix, b *batch.Batch, idx BatchIndex, item batch.Item, cfg Config, initTheta []float64) (Result, error) {
	if err := item.Validate(); err != nil {
		return Result{}, err
	}

	topics := phi.TopicSize()
	if topics == 0 {
		return Result{}, artmerr.InvalidOperation
	}

	theta := make([]float64, topics)
	if cfg.ReuseTheta && len(initTheta) == topics {
		copy(theta, initTheta)
	} else {
		fillUniform(theta)
	}

	passes := cfg.NumDocumentPasses
	needsPtdw := cfg.needsPtdw()
	useVek := cfg.OptForAVX && !needsPtdw

	var logLik, tokenWeight float64

	for pass := 0; pass < passes; pass++ {
		thetaNew := make([]float64, topics)
		var ptdw [][]float64
		if needsPtdw {
			ptdw = make([][]float64, item.NumTransactions())
		}
		var passLogLik, passWeight float64
		final := pass == passes-1

		for k := 0; k < item.NumTransactions(); k++ {
			start, end := item.Transaction(k)

			var rows []int
			var occWeight, cwWeight float64
			for j := start; j < end; j++ {
				tokIdx := item.TokenID[j]
				row := idx.PhiRow[tokIdx]
				if row < 0 {
					continue
				}
				rows = append(rows, row)
				occWeight += item.TokenWeight[j]
				cwWeight += cfg.modalityWeight(phi.ClassAt(row)) * item.TokenWeight[j]
			}
			if len(rows) == 0 {
				continue
			}

			ttName := ""
			if k < len(item.TransactionTypenameID) && item.TransactionTypenameID[k] < len(b.TransactionTypenames) {
				ttName = b.TransactionTypenames[item.TransactionTypenameID[k]]
			}
			tw := cfg.transactionWeight(ttName)

			p, sum := transactionProbs(phi, theta, rows, topics, useVek)
			if sum <= cfg.epsilon() {
				continue
			}
			for t := range p {
				p[t] /= sum
			}
			if needsPtdw {
				ptdw[k] = append([]float64(nil), p...)
			}

			weight := tw * occWeight
			for t := range p {
				thetaNew[t] += weight * p[t]
			}
			// Reported log-likelihood/token-weight fold in both weighting
			// axes (tw and per-row cw), unlike θ accumulation above, which is
			// driven by transaction evidence alone.
			scaledWeight := tw * cwWeight
			passLogLik += scaledWeight * logOrFloor(sum)
			passWeight += scaledWeight

			if final {
				for _, r := range rows {
					cw := cfg.modalityWeight(phi.ClassAt(r))
					for t := range p {
						n.Increase(r, t, cw*weight*p[t])
					}
				}
			}
		}

		for _, reg := range cfg.ThetaRegularizers {
			r := reg.RegularizeTheta(&item, phi.TopicNames(), thetaNew, ptdw)
			for t := range thetaNew {
				thetaNew[t] += r[t]
			}
		}
		normalize(thetaNew)
		theta = thetaNew

		if final {
			logLik, tokenWeight = passLogLik, passWeight
		}
	}

	return Result{ItemID: item.ID, Theta: theta, LogLikelihood: logLik, TokenWeight: tokenWeight}, nil
}

func fillUniform(theta []float64) {
	if len(theta) == 0 {
		return
	}
	u := 1.0 / float64(len(theta))
	for t := range theta {
		theta[t] = u
	}
}

// normalize clamps negative mass to zero and rescales to sum to 1,
// resetting to uniform when the row sums to <= 0 (unlike Φ column
// normalization, which leaves a column with no positive mass at zero).
func normalize(theta []float64) {
	var sum float64
	for _, v := range theta {
		if v > 0 {
			sum += v
		}
	}
	if sum <= 0 {
		fillUniform(theta)
		return
	}
	for t, v := range theta {
		if v < 0 {
			v = 0
		}
		theta[t] = v / sum
	}
}
