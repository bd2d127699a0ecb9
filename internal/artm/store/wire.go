// Package store persists Batch, Dictionary, and TopicModel to disk using a
// compact reflection-based binary codec, the way the teacher's cache layer
// persists embeddings: a small wire struct mirrors the in-memory type,
// encoded/decoded wholesale rather than field-by-field.
package store

// wireToken is the on-disk shape of token.Token. The cached hash is not
// persisted; it's recomputed on load via token.New so a codec version
// change to the hash function can't produce a silently stale cache.
type wireToken struct {
	ClassID             string
	Keyword             string
	TransactionTypename string
}

// wireItem is the on-disk shape of batch.Item.
type wireItem struct {
	ID    string
	Title string

	TokenID     []int
	TokenWeight []float64

	TransactionStartIndex []int
	TransactionTypenameID []int
}

// wireBatch is the on-disk shape of batch.Batch: the .batch file format.
type wireBatch struct {
	ID                   string
	Tokens               []wireToken
	ClassID              []string
	TransactionTypenames []string
	Items                []wireItem
}

// wireEntry is the on-disk shape of token.Entry.
type wireEntry struct {
	Tok   wireToken
	TF    float64
	DF    float64
	Value float64
}

// wireCooc is the on-disk shape of token.CoocEntry.
type wireCooc struct {
	First, Second int
	TF, DF, Value float64
}

// wireDictionary is the on-disk shape of a token.Dictionary: the .dict file
// format. The Collection is not persisted directly; it's rebuilt from
// Entries on load, since it's fully determined by the token list.
type wireDictionary struct {
	Name    string
	Entries []wireEntry
	Cooc    []wireCooc
}

// wireTopicModel is the on-disk shape of a trained Φ: the .model file
// format. Values is token-major, len == len(Tokens)*len(Topics).
type wireTopicModel struct {
	Tokens  []wireToken
	ClassID []string
	Topics  []string
	Values  []float64
}
