package stats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shaofeinus/POS-tagger/types"
)

var (
	ErrUnknownTag    = errors.New("unknown tag")
	ErrNegativeCount = errors.New("negative count")
)

// UnknownTagError reports a corpus tag that is not part of the inventory.
type UnknownTagError struct {
	Tag      string
	Sentence int
	Token    int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("sentence %d, token %d: %v %q", e.Sentence, e.Token, ErrUnknownTag, e.Tag)
}

func (e *UnknownTagError) Unwrap() error {
	return ErrUnknownTag
}

// WordCount is the number of times a vocabulary word was seen with some tag.
type WordCount struct {
	Word  int
	Count int
}

// Counts holds every count table of a training corpus. Words are identified
// by their position in the sorted vocabulary. Counts is filled by Load and is
// read-only afterwards.
type Counts struct {
	tags     *types.TagInventory
	suffixes *types.FeatureLexicon

	tokens     int
	sentences  int
	words      []string
	vocabulary map[string]int

	tagCount   []int
	wordCount  []int
	wordTag    []map[int]int
	tagWords   [][]WordCount
	transition [][]int
	capital    []int
	suffix     [][]int

	tagsPerWord        []int
	distinctWordTags   int
	predecessors       []int
	distinctTagBigrams int
}

func New(tags *types.TagInventory, suffixes *types.FeatureLexicon) *Counts {
	c := &Counts{tags: tags, suffixes: suffixes}
	c.reset()
	return c
}

func (c *Counts) reset() {
	size := c.tags.Size()
	c.tokens = 0
	c.sentences = 0
	c.words = nil
	c.vocabulary = map[string]int{}
	c.tagCount = make([]int, size)
	c.wordCount = nil
	c.wordTag = make([]map[int]int, size)
	for i := range c.wordTag {
		c.wordTag[i] = map[int]int{}
	}
	c.tagWords = make([][]WordCount, size)
	c.transition = make([][]int, size)
	for i := range c.transition {
		c.transition[i] = make([]int, size)
	}
	c.capital = make([]int, size)
	c.suffix = make([][]int, size)
	for i := range c.suffix {
		c.suffix[i] = make([]int, c.suffixes.Size())
	}
	c.tagsPerWord = nil
	c.distinctWordTags = 0
	c.predecessors = make([]int, size)
	c.distinctTagBigrams = 0
}

type observation struct {
	word string
	tag  types.Tag
}

// Load replaces the current tables with the counts of the given tagged
// sentences. On error the tables are left empty.
func (c *Counts) Load(sentences []types.Sentence) error {
	c.reset()

	wordCounts := map[string]int{}
	pairs := map[observation]int{}
	for s, sent := range sentences {
		if len(sent.Tokens) == 0 {
			continue
		}
		c.sentences++
		prevTag := c.tags.Start()
		prevName := types.StartTagName
		for i, token := range sent.Tokens {
			tag, ok := c.tags.Lookup(token.Tag)
			if !ok || c.tags.IsBoundary(tag) {
				c.reset()
				return &UnknownTagError{Tag: token.Tag, Sentence: s, Token: i}
			}
			word := types.NormalizeWord(token.Word, i, prevName)

			if i == 0 {
				c.tagCount[c.tags.Start()]++
			}
			c.tokens++
			wordCounts[word]++
			c.tagCount[tag]++
			pairs[observation{word: word, tag: tag}]++
			c.transition[prevTag][tag]++
			if i == len(sent.Tokens)-1 {
				c.transition[tag][c.tags.End()]++
			}

			if types.IsCapitalized(word) {
				c.capital[tag]++
			}
			for _, m := range c.suffixes.Matches(word) {
				c.suffix[tag][m]++
			}

			prevTag = tag
			prevName = token.Tag
		}
	}

	c.words = make([]string, 0, len(wordCounts))
	for w := range wordCounts {
		c.words = append(c.words, w)
	}
	sort.Strings(c.words)
	c.wordCount = make([]int, len(c.words))
	for i, w := range c.words {
		c.vocabulary[w] = i
		c.wordCount[i] = wordCounts[w]
	}
	for o, n := range pairs {
		c.wordTag[o.tag][c.vocabulary[o.word]] = n
	}

	c.index()
	return nil
}

// index derives the sorted per-tag word lists and the distinct pair counts
// from the raw tables.
func (c *Counts) index() {
	c.tagsPerWord = make([]int, len(c.words))
	c.distinctWordTags = 0
	for t, seen := range c.wordTag {
		list := make([]WordCount, 0, len(seen))
		for w, n := range seen {
			list = append(list, WordCount{Word: w, Count: n})
			if !c.tags.IsBoundary(types.Tag(t)) {
				c.tagsPerWord[w]++
				c.distinctWordTags++
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Word < list[j].Word })
		c.tagWords[t] = list
	}

	c.predecessors = make([]int, c.tags.Size())
	c.distinctTagBigrams = 0
	for prev, row := range c.transition {
		if types.Tag(prev) == c.tags.End() {
			continue
		}
		for tag, n := range row {
			if n > 0 {
				c.predecessors[tag]++
				c.distinctTagBigrams++
			}
		}
	}
}

func (c *Counts) Tags() *types.TagInventory {
	return c.tags
}

func (c *Counts) Suffixes() *types.FeatureLexicon {
	return c.suffixes
}

// TokenCount is N, the number of tagged tokens loaded.
func (c *Counts) TokenCount() int {
	return c.tokens
}

func (c *Counts) SentenceCount() int {
	return c.sentences
}

func (c *Counts) VocabularySize() int {
	return len(c.words)
}

// Vocabulary returns the sorted vocabulary. The slice must not be modified.
func (c *Counts) Vocabulary() []string {
	return c.words
}

func (c *Counts) WordID(word string) (int, bool) {
	id, ok := c.vocabulary[word]
	return id, ok
}

func (c *Counts) Word(id int) string {
	return c.words[id]
}

func (c *Counts) TagCount(tag types.Tag) int {
	return c.tagCount[tag]
}

func (c *Counts) WordCount(word int) int {
	return c.wordCount[word]
}

func (c *Counts) WordTagCount(tag types.Tag, word int) int {
	return c.wordTag[tag][word]
}

// TagWords lists the words seen with the tag, ordered by word id. The slice
// must not be modified.
func (c *Counts) TagWords(tag types.Tag) []WordCount {
	return c.tagWords[tag]
}

func (c *Counts) TransitionCount(prev, tag types.Tag) int {
	return c.transition[prev][tag]
}

// Successors returns the number of distinct tags seen after prev, the end of
// sentence included.
func (c *Counts) Successors(prev types.Tag) int {
	n := 0
	for _, count := range c.transition[prev] {
		if count > 0 {
			n++
		}
	}
	return n
}

func (c *Counts) CapitalCount(tag types.Tag) int {
	return c.capital[tag]
}

func (c *Counts) SuffixCount(tag types.Tag, suffix int) int {
	return c.suffix[tag][suffix]
}

// TagsPerWord is the number of distinct tags the word was seen with.
func (c *Counts) TagsPerWord(word int) int {
	return c.tagsPerWord[word]
}

// DistinctWordTags is the number of distinct (word, tag) pairs.
func (c *Counts) DistinctWordTags() int {
	return c.distinctWordTags
}

// Predecessors is the number of distinct tags seen right before tag.
func (c *Counts) Predecessors(tag types.Tag) int {
	return c.predecessors[tag]
}

// DistinctTagBigrams is the number of distinct (prev, tag) pairs.
func (c *Counts) DistinctTagBigrams() int {
	return c.distinctTagBigrams
}
