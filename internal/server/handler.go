package server

import (
	"encoding/json"
	"net/http"
	"pricecompare/internal/client"
	"pricecompare/internal/model"

	"github.com/pkg/errors"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

// writeError maps err onto a status code. Validation messages are returned to the
// client, every other failure only gets the status text.
func (s Server) writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	tid := getTraceContext(r.Context()).traceID
	switch {
	case errors.Is(err, model.ErrValidation):
		s.Logger.Debugf("%s: Invalid request, err: %v, TraceID: %s", fn, err, tid)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		s.Logger.Debugf("%s: Not found, err: %v, TraceID: %s", fn, err, tid)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, client.ErrUpstream):
		s.Logger.Errorf("%s: Upstream failure, err: %v, TraceID: %s", fn, err, tid)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	default:
		s.Logger.Errorf("%s: Internal error, err: %v, TraceID: %s", fn, err, tid)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s Server) decodeJSON(w http.ResponseWriter, r *http.Request, fn string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Logger.Debugf("%s: Error decoding JSON, err: %v, TraceID: %s", fn, err, getTraceContext(r.Context()).traceID)
		http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s Server) notFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Debugf("notFoundHandler: Requested resource not found, %s %s", r.Method, r.URL.Path)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

func (s Server) methodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Debugf("methodNotAllowedHandler: Method not allowed, %s %s", r.Method, r.URL.Path)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
