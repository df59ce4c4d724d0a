package lexicon

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// lexiconFile is the on-disk YAML schema:
//
//	words:
//	  - word: 안녕하세요
//	    frequency: 0.99
//	    category: greeting
//	endings:
//	  - 습니다
type lexiconFile struct {
	Words   []fileEntry `yaml:"words"`
	Endings []string    `yaml:"endings"`
}

type fileEntry struct {
	Word      string  `yaml:"word"`
	Frequency float64 `yaml:"frequency"`
	Category  string  `yaml:"category"`
}

// LoadFile reads lexicon entries and endings from a YAML file.
func LoadFile(path string) ([]Entry, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer f.Close()
	entries, endings, err := LoadReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("lexicon: load %q: %w", path, err)
	}
	return entries, endings, nil
}

// LoadReader decodes the YAML lexicon schema from r. Unknown fields are
// rejected so typos in hand-maintained dictionaries surface immediately.
func LoadReader(r io.Reader) ([]Entry, []string, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc lexiconFile
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(doc.Words) == 0 {
		return nil, nil, errors.New("no word entries")
	}

	entries := make([]Entry, 0, len(doc.Words))
	var errs []error
	for i, fe := range doc.Words {
		e := Entry{Word: fe.Word, Frequency: fe.Frequency, Category: Category(fe.Category)}
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("words[%d]: %w", i, err))
			continue
		}
		entries = append(entries, e)
	}
	for i, end := range doc.Endings {
		if end == "" {
			errs = append(errs, fmt.Errorf("endings[%d]: empty ending", i))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return entries, doc.Endings, nil
}
