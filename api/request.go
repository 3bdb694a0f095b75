package api

import (
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/shaofeinus/POS-tagger/pipeline"
)

const (
	RequestIDHeader  = "X-Request-Id"
	DegenerateHeader = "X-Degenerate-Sentences"
)

type Request struct {
	Pipeline pipeline.Pipeline
}

// ProcessData tags a POSTed body of untagged text, one sentence per line,
// and answers with the tagged lines.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	logger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	tid := r.Header.Get(RequestIDHeader)
	if tid == "" {
		tid = "api"
	}
	request := pipeline.Request{
		Tid:  tid,
		Text: string(msg),
	}
	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp, ok := <-req.Pipeline(request)
	if !ok || resp.Err != nil {
		logger.Err(resp.Err).Int("status", http.StatusInternalServerError).Msg("Pipeline failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(DegenerateHeader, strconv.Itoa(resp.Degenerate))
	_, _ = w.Write([]byte(resp.Tagged))
	logger.Info().Int("status", http.StatusOK).Int("sentences", resp.Sentences).Msg("Finished processing request")
}
