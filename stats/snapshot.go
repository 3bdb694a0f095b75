package stats

import (
	"fmt"
	"sort"

	"github.com/shaofeinus/POS-tagger/types"
)

// Snapshot is the serializable form of Counts. Tables are keyed by tag and
// word so that a snapshot does not depend on ordinals.
type Snapshot struct {
	Tokens      int                       `json:"tokens"`
	Sentences   int                       `json:"sentences"`
	Words       []string                  `json:"words"`
	WordCounts  []int                     `json:"word_counts"`
	TagCounts   map[string]int            `json:"tag_counts"`
	WordTags    map[string]map[string]int `json:"word_tags"`
	Transitions map[string]map[string]int `json:"transitions"`
	Capitals    map[string]int            `json:"capitals"`
	Suffixes    map[string]map[string]int `json:"suffixes"`
}

func (c *Counts) Snapshot() Snapshot {
	snap := Snapshot{
		Tokens:      c.tokens,
		Sentences:   c.sentences,
		Words:       append([]string(nil), c.words...),
		WordCounts:  append([]int(nil), c.wordCount...),
		TagCounts:   map[string]int{},
		WordTags:    map[string]map[string]int{},
		Transitions: map[string]map[string]int{},
		Capitals:    map[string]int{},
		Suffixes:    map[string]map[string]int{},
	}

	for i := 0; i < c.tags.Size(); i++ {
		tag := types.Tag(i)
		name := c.tags.Name(tag)
		if n := c.tagCount[tag]; n > 0 {
			snap.TagCounts[name] = n
		}
		if n := c.capital[tag]; n > 0 {
			snap.Capitals[name] = n
		}
		if len(c.tagWords[tag]) > 0 {
			row := make(map[string]int, len(c.tagWords[tag]))
			for _, wc := range c.tagWords[tag] {
				row[c.words[wc.Word]] = wc.Count
			}
			snap.WordTags[name] = row
		}
		for j, n := range c.transition[tag] {
			if n == 0 {
				continue
			}
			if snap.Transitions[name] == nil {
				snap.Transitions[name] = map[string]int{}
			}
			snap.Transitions[name][c.tags.Name(types.Tag(j))] = n
		}
		for j, n := range c.suffix[tag] {
			if n == 0 {
				continue
			}
			if snap.Suffixes[name] == nil {
				snap.Suffixes[name] = map[string]int{}
			}
			snap.Suffixes[name][c.suffixes.Suffix(j)] = n
		}
	}
	return snap
}

func negative(table string, key string, n int) error {
	if n < 0 {
		return fmt.Errorf("snapshot %s %q: %w %d", table, key, ErrNegativeCount, n)
	}
	return nil
}

func (snap Snapshot) checkCounts() error {
	if err := negative("totals", "tokens", snap.Tokens); err != nil {
		return err
	}
	if err := negative("totals", "sentences", snap.Sentences); err != nil {
		return err
	}
	for i, n := range snap.WordCounts {
		if err := negative("word count", snap.Words[i], n); err != nil {
			return err
		}
	}
	for _, table := range []struct {
		name string
		rows map[string]int
	}{
		{"tag count", snap.TagCounts},
		{"capitals", snap.Capitals},
	} {
		for key, n := range table.rows {
			if err := negative(table.name, key, n); err != nil {
				return err
			}
		}
	}
	for _, table := range []struct {
		name string
		rows map[string]map[string]int
	}{
		{"word tags", snap.WordTags},
		{"transitions", snap.Transitions},
		{"suffixes", snap.Suffixes},
	} {
		for tag, row := range table.rows {
			for key, n := range row {
				if err := negative(table.name, tag+" "+key, n); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Restore replaces the current tables with the snapshot content. On error
// the tables are left empty.
func (c *Counts) Restore(snap Snapshot) (err error) {
	c.reset()
	defer func() {
		if err != nil {
			c.reset()
		}
	}()

	if len(snap.Words) != len(snap.WordCounts) {
		return fmt.Errorf("snapshot has %d words but %d word counts", len(snap.Words), len(snap.WordCounts))
	}
	if !sort.StringsAreSorted(snap.Words) {
		return fmt.Errorf("snapshot vocabulary is not sorted")
	}
	if err := snap.checkCounts(); err != nil {
		return err
	}

	c.tokens = snap.Tokens
	c.sentences = snap.Sentences
	c.words = append([]string(nil), snap.Words...)
	c.wordCount = append([]int(nil), snap.WordCounts...)
	for i, w := range c.words {
		c.vocabulary[w] = i
	}

	suffixIndex := make(map[string]int, c.suffixes.Size())
	for i := 0; i < c.suffixes.Size(); i++ {
		suffixIndex[c.suffixes.Suffix(i)] = i
	}

	lookup := func(name string) (types.Tag, error) {
		tag, ok := c.tags.Lookup(name)
		if !ok {
			return 0, &UnknownTagError{Tag: name, Sentence: -1, Token: -1}
		}
		return tag, nil
	}

	for name, n := range snap.TagCounts {
		tag, err := lookup(name)
		if err != nil {
			return err
		}
		c.tagCount[tag] = n
	}
	for name, n := range snap.Capitals {
		tag, err := lookup(name)
		if err != nil {
			return err
		}
		c.capital[tag] = n
	}
	for name, row := range snap.WordTags {
		tag, err := lookup(name)
		if err != nil {
			return err
		}
		for w, n := range row {
			id, ok := c.vocabulary[w]
			if !ok {
				return fmt.Errorf("snapshot word %q is not in the vocabulary", w)
			}
			c.wordTag[tag][id] = n
		}
	}
	for prevName, row := range snap.Transitions {
		prev, err := lookup(prevName)
		if err != nil {
			return err
		}
		for name, n := range row {
			tag, err := lookup(name)
			if err != nil {
				return err
			}
			c.transition[prev][tag] = n
		}
	}
	for name, row := range snap.Suffixes {
		tag, err := lookup(name)
		if err != nil {
			return err
		}
		for suffix, n := range row {
			i, ok := suffixIndex[suffix]
			if !ok {
				return fmt.Errorf("snapshot suffix %q is not in the feature lexicon", suffix)
			}
			c.suffix[tag][i] = n
		}
	}

	c.index()
	return nil
}
