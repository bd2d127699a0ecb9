package token

import (
	"fmt"
	"sort"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

// Entry augments a Token with the per-token statistics tracked by a
// Dictionary: global term frequency, document frequency, and an optional
// user- or gather-provided value used for ranking (e.g. top-K filtering,
// coherence weighting).
type Entry struct {
	Tok   Token
	TF    float64
	DF    float64
	Value float64
}

// CoocEntry records an optional pairwise co-occurrence statistic between
// two dictionary entries, identified by their index in Dictionary.Entries.
type CoocEntry struct {
	First, Second int
	TF, DF, Value float64
}

// GatherSource is the minimal view of a batch the Gather operation needs:
// a token table plus, per item, which token ids occur and with what
// weight. *batch.Batch satisfies this through its GatherTokens and
// GatherItems methods.
type GatherSource interface {
	GatherTokens() []Token
	GatherItems() [][]GatherOccurrence
}

// GatherOccurrence is one (token index into GatherTokens, weight) pair
// within an item, as consumed by Dictionary.Gather.
type GatherOccurrence struct {
	TokenIndex int
	Weight     float64
}

// Dictionary augments a TokenCollection with per-entry numeric fields and
// an optional co-occurrence pair table. It is read-only after publication:
// recreating it (Gather, Filter) replaces the whole dictionary atomically
// at the call site rather than mutating fields shared with live readers.
type Dictionary struct {
	Name    string
	Coll    *Collection
	Entries []Entry // indexed by token id from Coll
	Cooc    []CoocEntry
}

// NewDictionary returns an empty, named Dictionary over a fresh
// TokenCollection.
func NewDictionary(name string) *Dictionary {
	return &Dictionary{Name: name, Coll: NewCollection()}
}

// Gather scans each source batch once, incrementing DF by the number of
// items containing a token and TF by the summed per-item weight. Tokens
// are interned into the dictionary's collection as they are first seen.
func (d *Dictionary) Gather(sources ...GatherSource) {
	for _, src := range sources {
		tokens := src.GatherTokens()
		localToGlobal := make([]int, len(tokens))
		for i, t := range tokens {
			id := d.Coll.Add(t)
			localToGlobal[i] = id
			d.ensureEntry(id)
		}
		for _, item := range src.GatherItems() {
			seen := make(map[int]bool, len(item))
			for _, occ := range item {
				gid := localToGlobal[occ.TokenIndex]
				d.Entries[gid].TF += occ.Weight
				if !seen[gid] {
					d.Entries[gid].DF++
					seen[gid] = true
				}
			}
		}
	}
}

func (d *Dictionary) ensureEntry(id int) {
	for len(d.Entries) <= id {
		d.Entries = append(d.Entries, Entry{})
	}
	if d.Entries[id].Tok.Keyword == "" && d.Entries[id].Tok.ClassID == "" {
		tok, _ := d.Coll.Token(id)
		d.Entries[id].Tok = tok
	}
}

// FilterSpec configures Dictionary.Filter. Bounds are absolute document
// counts unless the corresponding Fractional* flag is set, in which case
// they are interpreted as a fraction in [0,1] of the maximum observed DF.
type FilterSpec struct {
	MinDF             float64
	MaxDF             float64
	MinDFFractional   bool
	MaxDFFractional   bool
	MaxDictionarySize int // 0 = unbounded; otherwise top-K by Value
}

// Filter returns a new Dictionary retaining only entries whose DF falls in
// the configured [MinDF, MaxDF] range, optionally capped to the top-K
// entries by Value. The source dictionary is left untouched; the result is
// a fresh object so callers can publish it atomically.
func (d *Dictionary) Filter(spec FilterSpec) *Dictionary {
	maxObservedDF := 0.0
	for _, e := range d.Entries {
		if e.DF > maxObservedDF {
			maxObservedDF = e.DF
		}
	}
	minDF := spec.MinDF
	if spec.MinDFFractional {
		minDF = spec.MinDF * maxObservedDF
	}
	maxDF := spec.MaxDF
	if spec.MaxDFFractional {
		maxDF = spec.MaxDF * maxObservedDF
	}
	if maxDF <= 0 {
		maxDF = maxObservedDF
	}

	kept := make([]Entry, 0, len(d.Entries))
	for _, e := range d.Entries {
		if e.DF >= minDF && e.DF <= maxDF {
			kept = append(kept, e)
		}
	}

	if spec.MaxDictionarySize > 0 && len(kept) > spec.MaxDictionarySize {
		sort.Slice(kept, func(i, j int) bool { return kept[i].Value > kept[j].Value })
		kept = kept[:spec.MaxDictionarySize]
	}

	out := NewDictionary(d.Name)
	out.Entries = make([]Entry, 0, len(kept))
	for _, e := range kept {
		id := out.Coll.Add(e.Tok)
		out.ensureEntry(id)
		out.Entries[id].TF = e.TF
		out.Entries[id].DF = e.DF
		out.Entries[id].Value = e.Value
	}
	return out
}

// Lookup returns the dictionary entry for a token, by id.
func (d *Dictionary) Lookup(id int) (Entry, error) {
	if id < 0 || id >= len(d.Entries) {
		return Entry{}, fmt.Errorf("dictionary %q: entry %d: %w", d.Name, id, artmerr.NotFound)
	}
	return d.Entries[id], nil
}

// LookupToken returns the dictionary entry for a Token, if present.
func (d *Dictionary) LookupToken(t Token) (Entry, bool) {
	id, ok := d.Coll.Lookup(t)
	if !ok {
		return Entry{}, false
	}
	e, err := d.Lookup(id)
	return e, err == nil
}
