package store

import "github.com/artm-core/artm/internal/artm/token"

// SaveDictionary writes d to path in the .dict wire format.
func SaveDictionary(path string, d *token.Dictionary) error {
	w := wireDictionary{
		Name:    d.Name,
		Entries: make([]wireEntry, len(d.Entries)),
		Cooc:    make([]wireCooc, len(d.Cooc)),
	}
	for i, e := range d.Entries {
		w.Entries[i] = wireEntry{
			Tok:   wireToken{ClassID: e.Tok.ClassID, Keyword: e.Tok.Keyword, TransactionTypename: e.Tok.TransactionTypename},
			TF:    e.TF,
			DF:    e.DF,
			Value: e.Value,
		}
	}
	for i, c := range d.Cooc {
		w.Cooc[i] = wireCooc{First: c.First, Second: c.Second, TF: c.TF, DF: c.DF, Value: c.Value}
	}
	return writeFile(path, w)
}

// LoadDictionary reads a .dict file from path, rebuilding the Collection
// from the persisted Entries.
func LoadDictionary(path string) (*token.Dictionary, error) {
	var w wireDictionary
	if err := readFile(path, &w); err != nil {
		return nil, err
	}

	d := token.NewDictionary(w.Name)
	d.Entries = make([]token.Entry, len(w.Entries))
	for i, e := range w.Entries {
		tok := token.New(e.Tok.ClassID, e.Tok.Keyword, e.Tok.TransactionTypename)
		id := d.Coll.Add(tok)
		d.Entries[id] = token.Entry{Tok: tok, TF: e.TF, DF: e.DF, Value: e.Value}
	}
	d.Cooc = make([]token.CoocEntry, len(w.Cooc))
	for i, c := range w.Cooc {
		d.Cooc[i] = token.CoocEntry{First: c.First, Second: c.Second, TF: c.TF, DF: c.DF, Value: c.Value}
	}
	return d, nil
}
