package store

import (
	"fmt"
	"os"

	"github.com/kelindar/binary"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/token"
)

// SaveBatch writes b to path in the .batch wire format.
func SaveBatch(path string, b *batch.Batch) error {
	w := wireBatch{
		ID:                   b.ID,
		ClassID:              b.ClassID,
		TransactionTypenames: b.TransactionTypenames,
		Tokens:               make([]wireToken, len(b.Tokens)),
		Items:                make([]wireItem, len(b.Items)),
	}
	for i, t := range b.Tokens {
		w.Tokens[i] = wireToken{ClassID: t.ClassID, Keyword: t.Keyword, TransactionTypename: t.TransactionTypename}
	}
	for i, it := range b.Items {
		w.Items[i] = wireItem{
			ID:                    it.ID,
			Title:                 it.Title,
			TokenID:               it.TokenID,
			TokenWeight:           it.TokenWeight,
			TransactionStartIndex: it.TransactionStartIndex,
			TransactionTypenameID: it.TransactionTypenameID,
		}
	}
	return writeFile(path, w)
}

// LoadBatch reads a .batch file from path.
func LoadBatch(path string) (*batch.Batch, error) {
	var w wireBatch
	if err := readFile(path, &w); err != nil {
		return nil, err
	}

	b := &batch.Batch{
		ID:                   w.ID,
		ClassID:              w.ClassID,
		TransactionTypenames: w.TransactionTypenames,
		Tokens:               make([]token.Token, len(w.Tokens)),
		Items:                make([]batch.Item, len(w.Items)),
	}
	for i, t := range w.Tokens {
		b.Tokens[i] = token.New(t.ClassID, t.Keyword, t.TransactionTypename)
	}
	for i, it := range w.Items {
		b.Items[i] = batch.Item{
			ID:                    it.ID,
			Title:                 it.Title,
			TokenID:               it.TokenID,
			TokenWeight:           it.TokenWeight,
			TransactionStartIndex: it.TransactionStartIndex,
			TransactionTypenameID: it.TransactionTypenameID,
		}
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("store: load %s: %w", path, err)
	}
	return b, nil
}

func writeFile(path string, v any) error {
	data, err := binary.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, artmerr.CorruptedMessage)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, artmerr.DiskWrite)
	}
	return nil
}

func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", path, artmerr.DiskRead)
	}
	if err := binary.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, artmerr.CorruptedMessage)
	}
	return nil
}
