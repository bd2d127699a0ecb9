package regularize

import "github.com/artm-core/artm/internal/artm/phimatrix"

// LabelRegularizationPhi pulls mass toward the topic a modality's gold
// label is known to represent: for a token whose class_id is a key of
// TopicOfClass, r_{w,t} += tau * φ_{w,t} for t == the mapped topic.
type LabelRegularizationPhi struct {
	Tau         float64
	TopicOfClass map[string]string // class_id -> topic name
}

func (LabelRegularizationPhi) Name() string { return "LabelRegularizationPhi" }

func (l LabelRegularizationPhi) RegularizePhi(_, ref phimatrix.Matrix, r phimatrix.Matrix) {
	topicIdx := make(map[string]int, ref.TopicSize())
	for t := 0; t < ref.TopicSize(); t++ {
		topicIdx[ref.TopicName(t)] = t
	}

	for i := 0; i < ref.TokenSize(); i++ {
		topicName, ok := l.TopicOfClass[ref.ClassAt(i)]
		if !ok {
			continue
		}
		t, ok := topicIdx[topicName]
		if !ok {
			continue
		}
		r.Increase(i, t, l.Tau*ref.Get(i, t))
	}
}
