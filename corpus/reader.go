package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/types"
)

const (
	tagSeparator  = "/"
	maxLineLength = 1024 * 1024
)

var ErrMalformedToken = errors.New("token has no tag")

// ParseError locates a malformed token in a tagged corpus.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line+1, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseTagged splits a line of word/TAG tokens. The tag starts after the last
// slash so words may contain slashes themselves.
func ParseTagged(index int, line string) (types.Sentence, error) {
	fields := strings.Fields(line)
	sent := types.Sentence{Index: index, Tokens: make([]types.Token, 0, len(fields))}
	for _, field := range fields {
		cut := strings.LastIndex(field, tagSeparator)
		if cut <= 0 || cut == len(field)-1 {
			return sent, &ParseError{Line: index, Token: field, Err: ErrMalformedToken}
		}
		sent.Tokens = append(sent.Tokens, types.Token{Word: field[:cut], Tag: field[cut+1:]})
	}
	return sent, nil
}

func ParseUntagged(index int, line string) types.Sentence {
	return types.NewUntaggedSentence(index, strings.Fields(line))
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	return scanner
}

// ReadTagged reads a tagged corpus, one sentence per line. Blank lines are
// skipped.
func ReadTagged(r io.Reader) ([]types.Sentence, error) {
	scanner := newScanner(r)

	var sentences []types.Sentence
	for line := 0; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		sent, err := ParseTagged(line, text)
		if err != nil {
			return nil, err
		}
		sent.Index = len(sentences)
		sentences = append(sentences, sent)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

func ReadTaggedFile(filePath string) ([]types.Sentence, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sentences, err := ReadTagged(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return sentences, nil
}

// ReadUntagged reads one sentence per line. Blank lines give empty sentences
// so that output lines stay aligned with input lines.
func ReadUntagged(r io.Reader) ([]types.Sentence, error) {
	scanner := newScanner(r)

	var sentences []types.Sentence
	for line := 0; scanner.Scan(); line++ {
		sentences = append(sentences, ParseUntagged(line, scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

// NewUntaggedReader streams the sentences of an untagged file. The error
// channel yields at most one read error and is closed once the sentence
// channel is closed.
func NewUntaggedReader(filePath string) (<-chan types.Sentence, <-chan error, error) {
	_, fileName := path.Split(filePath)
	readerLogger := logger.NewLogger("UntaggedReader (" + fileName + ")")

	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan types.Sentence)
	errs := make(chan error, 1)

	go func() {
		defer f.Close()
		defer close(errs)
		defer close(out)

		scanner := newScanner(f)
		line := 0
		for ; scanner.Scan(); line++ {
			out <- ParseUntagged(line, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			readerLogger.Error().Err(err).Int("line", line).Msg("Failed to read input")
			errs <- fmt.Errorf("read %s: %w", filePath, err)
			return
		}
		readerLogger.Debug().Int("lines", line).Msg("Finished reading input")
	}()

	return out, errs, nil
}
