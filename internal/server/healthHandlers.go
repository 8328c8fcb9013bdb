package server

import (
	"context"
	"net/http"
	"time"
)

func (s Server) health() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			s.Logger.Errorf("health: Database ping failed, err: %v, TraceID: %s", err, getTraceContext(r.Context()).traceID)
			s.writeJsonResponse(w, response{Status: "unavailable"}, http.StatusServiceUnavailable)
			return
		}
		s.writeJsonResponse(w, response{Status: "ok"}, http.StatusOK)
	}
}
