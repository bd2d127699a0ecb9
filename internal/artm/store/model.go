package store

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/token"
)

// SaveTopicModel writes phi to path in the .model wire format, flattening
// whatever Matrix implementation phi is to a dense token-major array.
func SaveTopicModel(path string, phi phimatrix.Matrix) error {
	w := wireTopicModel{
		Topics:  phi.TopicNames(),
		Tokens:  make([]wireToken, phi.TokenSize()),
		ClassID: make([]string, phi.TokenSize()),
		Values:  make([]float64, phi.TokenSize()*phi.TopicSize()),
	}
	numTopics := phi.TopicSize()
	for i := 0; i < phi.TokenSize(); i++ {
		t := phi.TokenAt(i)
		w.Tokens[i] = wireToken{ClassID: t.ClassID, Keyword: t.Keyword, TransactionTypename: t.TransactionTypename}
		w.ClassID[i] = phi.ClassAt(i)
		phi.RowNonzero(i, func(topic int, v float64) {
			w.Values[i*numTopics+topic] = v
		})
	}
	return writeFile(path, w)
}

// LoadTopicModel reads a .model file from path into a fresh DenseMatrix.
func LoadTopicModel(path string) (*phimatrix.DenseMatrix, error) {
	var w wireTopicModel
	if err := readFile(path, &w); err != nil {
		return nil, err
	}
	if len(w.Tokens) != len(w.ClassID) {
		return nil, fmt.Errorf("store: model %s: token/class_id length mismatch: %w", path, artmerr.CorruptedMessage)
	}

	tokens := make([]token.Token, len(w.Tokens))
	for i, t := range w.Tokens {
		tokens[i] = token.New(t.ClassID, t.Keyword, t.TransactionTypename)
	}

	phi := phimatrix.NewDense(tokens, w.ClassID, w.Topics)
	numTopics := len(w.Topics)
	for i := range tokens {
		for tpc := 0; tpc < numTopics; tpc++ {
			v := w.Values[i*numTopics+tpc]
			if v != 0 {
				phi.Set(i, tpc, v)
			}
		}
	}
	return phi, nil
}
