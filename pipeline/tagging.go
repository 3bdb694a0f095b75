package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/types"
)

// Lines splits untagged text into one sentence per line.
func Lines(text string) []types.Sentence {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	sentences := make([]types.Sentence, len(lines))
	for i, line := range lines {
		sentences[i] = corpus.ParseUntagged(i, line)
	}
	return sentences
}

// Tagging tags the request text line by line. The response text has one
// tagged line per input line, blank lines included.
func Tagging(model pos.Model, tags *types.TagInventory) Pipeline {
	pplnLogger := logger.NewLogger("Tagging pipeline")
	tagger := NewPOSTagger(model, tags)

	return func(request Request) <-chan Response {
		responseChan := make(chan Response, 1)
		reqLogger := pplnLogger.With().Str("tid", request.Tid).Logger()
		reqLogger.Info().Msg("Started tagging pipeline")

		go func() {
			defer close(responseChan)
			sentences := Lines(request.Text)

			in := make(chan types.Sentence)
			ordered := Ordered(tagger(in))
			go func() {
				defer close(in)
				for _, sent := range sentences {
					in <- sent
				}
			}()

			response := Response{Tid: request.Tid, Sentences: len(sentences)}
			var builder strings.Builder
			for t := range ordered {
				switch {
				case t.Err == nil:
				case errors.Is(t.Err, pos.ErrDegenerate):
					response.Degenerate++
					reqLogger.Warn().Int("sentence", t.Index).Err(t.Err).Msg("Tagged with fallback tags")
				case response.Err == nil:
					response.Err = fmt.Errorf("sentence %d: %w", t.Index, t.Err)
				}
				builder.WriteString(corpus.FormatTagged(t.Sentence))
				builder.WriteByte('\n')
			}
			response.Tagged = builder.String()

			if response.Err != nil {
				reqLogger.Err(response.Err).Msg("Tagging pipeline failed")
			} else {
				reqLogger.Info().
					Int("sentences", response.Sentences).
					Int("degenerate", response.Degenerate).
					Msg("Finished tagging pipeline")
			}
			responseChan <- response
		}()

		return responseChan
	}
}
