package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shaofeinus/POS-tagger/types"
)

func FormatTagged(sent types.Sentence) string {
	parts := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		parts[i] = token.Word + tagSeparator + token.Tag
	}
	return strings.Join(parts, " ")
}

func FormatUntagged(sent types.Sentence) string {
	return strings.Join(sent.Words(), " ")
}

func WriteTagged(w io.Writer, sentences []types.Sentence) error {
	bw := bufio.NewWriter(w)
	for _, sent := range sentences {
		if _, err := bw.WriteString(FormatTagged(sent) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteTaggedFile(filePath string, sentences []types.Sentence) error {
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := WriteTagged(f, sentences); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	return f.Close()
}

// Untag strips the tags of every sentence.
func Untag(sentences []types.Sentence) []types.Sentence {
	untagged := make([]types.Sentence, len(sentences))
	for i, sent := range sentences {
		untagged[i] = sent.Untagged()
	}
	return untagged
}
