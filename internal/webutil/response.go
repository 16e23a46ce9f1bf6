package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

const (
	HeaderContentType   = "Content-Type"
	ContentTypeJSONUTF8 = "application/json; charset=utf-8"

	// MaxBodyBytes caps request bodies read by DecodeJSON.
	MaxBodyBytes = 1 << 20
)

type errorBody struct {
	Error    string   `json:"error"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error","message":"Internal server error"}`))
		return
	}
	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// WriteError logs err on the request logger and writes it as JSON. Errors
// that are not an *HTTPError become a 500 without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = ErrInternal(err)
	}

	logger := zerolog.Ctx(r.Context())
	ev := logger.Warn()
	if httpErr.Code >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Int("status", httpErr.Code).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(httpErr.Message)

	RespondWithJSON(w, httpErr.Code, errorBody{
		Error:    httpErr.Title,
		Message:  httpErr.Message,
		Messages: httpErr.Messages,
	})
}

// AppHandler is a handler that returns its failure instead of writing it.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to http.HandlerFunc.
func MakeHandler(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// DecodeJSON reads a JSON object from the request body. An empty body leaves
// dst untouched; anything that is not a single JSON value is a 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return ErrBadRequest("Request body too large", err)
		case errors.Is(err, io.EOF):
			return nil
		default:
			return ErrBadRequest("Malformed JSON body", err)
		}
	}
	if dec.More() {
		return ErrBadRequest("Malformed JSON body", errors.New("trailing data after JSON object"))
	}
	return nil
}
