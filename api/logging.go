package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shaofeinus/POS-tagger/logger"
)

var defaultLogger = logger.NewLogger("API")

type endpointLoggerFields struct {
	Method        string `json:"method"`
	Url           string `json:"url"`
	ContentLength int64  `json:"content_length"`
	RequestID     string `json:"request_id,omitempty"`
}

const RequestInfoFieldsKey = "request_info"

func makeRequestLogger(request *http.Request) zerolog.Logger {
	fields := endpointLoggerFields{
		Method:        request.Method,
		Url:           request.URL.String(),
		ContentLength: request.ContentLength,
		RequestID:     request.Header.Get(RequestIDHeader),
	}
	return defaultLogger.
		With().Interface(RequestInfoFieldsKey, fields).Logger()
}
