package transliteration

// DictionaryEntry is a whole-word override for one script. Keys are matched
// case-insensitively after repeat collapsing.
type DictionaryEntry struct {
	Key    string `yaml:"key"`
	Script Script `yaml:"script"`
	Output string `yaml:"output"`
}

// Dictionary is the read-only lookup store for one script.
type Dictionary struct {
	entries map[string]string
}

func newDictionary(entries map[string]string) *Dictionary {
	return &Dictionary{entries: entries}
}

// Lookup expects a folded key (see Token.Key).
func (d *Dictionary) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	out, ok := d.entries[key]
	return out, ok
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
