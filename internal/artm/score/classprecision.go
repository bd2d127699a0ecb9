package score

import "github.com/artm-core/artm/internal/artm/phimatrix"

// ClassPrecision reports, among items whose batch carries a "gold class"
// token (a token in GoldClassID whose weight marks the item's true
// label), the fraction whose argmax θ topic belongs to that same class —
// i.e. whether the dominant inferred topic is one this modality's
// TopicClass mapping assigns to the gold class.
//
// The topic->class assignment (TopicClass) is supplied by the caller
// (typically derived from a LabelRegularizationPhi-style mapping); a topic
// absent from TopicClass never counts as a match.
type ClassPrecision struct {
	GoldClassID string
	TopicClass  map[string]string // topic name -> gold label (keyword of the GoldClassID token)
}

func (ClassPrecision) Name() string { return "ClassPrecision" }

// ClassPrecisionValue is the finalized accuracy summary.
type ClassPrecisionValue struct {
	Evaluated int
	Correct   int
	Value     float64
}

func (s ClassPrecision) CalculateScore(bp BatchPartial) any {
	goldByItem := make(map[string]string)
	for _, item := range bp.Batch.Items {
		for j, tid := range item.TokenID {
			if tid < 0 || tid >= len(bp.Batch.ClassID) {
				continue
			}
			if bp.Batch.ClassID[tid] == s.GoldClassID {
				goldByItem[item.ID] = bp.Batch.Tokens[tid].Keyword
				_ = j
				break
			}
		}
	}

	var evaluated, correct int
	for _, it := range bp.Items {
		gold, ok := goldByItem[it.ItemID]
		if !ok {
			continue
		}
		argmax := argmaxTopic(it.Theta)
		if argmax < 0 || argmax >= len(bp.TopicNames) {
			continue
		}
		evaluated++
		if s.TopicClass[bp.TopicNames[argmax]] == gold {
			correct++
		}
	}
	return ClassPrecisionValue{Evaluated: evaluated, Correct: correct}
}

func argmaxTopic(theta []float64) int {
	best := -1
	bestV := 0.0
	for t, v := range theta {
		if best < 0 || v > bestV {
			best, bestV = t, v
		}
	}
	return best
}

func (ClassPrecision) AppendScore(cumulative, partial any) any {
	c, _ := cumulative.(ClassPrecisionValue)
	p := partial.(ClassPrecisionValue)
	c.Evaluated += p.Evaluated
	c.Correct += p.Correct
	return c
}

func (ClassPrecision) Finalize(cumulative any, _ phimatrix.Matrix) any {
	c, _ := cumulative.(ClassPrecisionValue)
	if c.Evaluated > 0 {
		c.Value = float64(c.Correct) / float64(c.Evaluated)
	}
	return c
}
