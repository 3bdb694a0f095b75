package types

import (
	"fmt"
	"sync"
)

const (
	StartTagName = "<s>"
	EndTagName   = "</s>"
	DefaultTag   = "NN"
	OpenQuoteTag = "``"
)

// Tag is the ordinal of a tag inside its TagInventory.
type Tag int

// TagInventory is an ordered, closed set of tags. It is never mutated after
// construction and may be shared between goroutines.
type TagInventory struct {
	names  []string
	index  map[string]Tag
	states []Tag
	start  Tag
	end    Tag
}

func NewTagInventory(names []string) (*TagInventory, error) {
	inv := &TagInventory{
		names: make([]string, len(names)),
		index: make(map[string]Tag, len(names)),
		start: -1,
		end:   -1,
	}
	copy(inv.names, names)

	for i, name := range inv.names {
		if _, ok := inv.index[name]; ok {
			return nil, fmt.Errorf("duplicate tag %q", name)
		}
		tag := Tag(i)
		inv.index[name] = tag
		switch name {
		case StartTagName:
			inv.start = tag
		case EndTagName:
			inv.end = tag
		default:
			inv.states = append(inv.states, tag)
		}
	}

	if inv.start < 0 || inv.end < 0 {
		return nil, fmt.Errorf("tag inventory must contain %s and %s", StartTagName, EndTagName)
	}
	return inv, nil
}

func (inv *TagInventory) Lookup(name string) (Tag, bool) {
	tag, ok := inv.index[name]
	return tag, ok
}

func (inv *TagInventory) Name(tag Tag) string {
	if tag < 0 || int(tag) >= len(inv.names) {
		return ""
	}
	return inv.names[tag]
}

func (inv *TagInventory) Names() []string {
	names := make([]string, len(inv.names))
	copy(names, inv.names)
	return names
}

func (inv *TagInventory) Size() int {
	return len(inv.names)
}

// States returns every tag except the two sentence boundaries, in inventory
// order. The returned slice must not be modified.
func (inv *TagInventory) States() []Tag {
	return inv.states
}

func (inv *TagInventory) Start() Tag {
	return inv.start
}

func (inv *TagInventory) End() Tag {
	return inv.end
}

func (inv *TagInventory) IsBoundary(tag Tag) bool {
	return tag == inv.start || tag == inv.end
}

var pennTreebankTags = []string{
	"CC", "CD", "DT", "EX", "FW", "IN", "JJ", "JJR", "JJS", "LS",
	"MD", "NN", "NNS", "NNP", "NNPS", "PDT", "POS", "PRP", "PRP$", "RB",
	"RBR", "RBS", "RP", "SYM", "TO", "UH", "VB", "VBD", "VBG", "VBN",
	"VBP", "VBZ", "WDT", "WP", "WP$", "WRB",
	StartTagName, EndTagName,
	"$", "#", OpenQuoteTag, "''", "-LRB-", "-RRB-", ",", ".", ":",
}

var (
	pennTreebank     *TagInventory
	pennTreebankOnce sync.Once
)

// PennTreebank returns the shared 47 tag inventory, sentence boundaries
// included.
func PennTreebank() *TagInventory {
	pennTreebankOnce.Do(func() {
		inv, err := NewTagInventory(pennTreebankTags)
		if err != nil {
			panic(err)
		}
		pennTreebank = inv
	})
	return pennTreebank
}
