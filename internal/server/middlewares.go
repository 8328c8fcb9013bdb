package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const maxRequestBodyBytes = 64 << 10

type traceContextKey struct{}
type traceContext struct {
	traceID string
}

type ownerContextKey struct{}

func setTraceContext(ctx context.Context, tc traceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}
func getTraceContext(ctx context.Context) traceContext {
	tc, _ := ctx.Value(traceContextKey{}).(traceContext)
	return tc
}

func (s Server) maxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, maxRequestBodyBytes)
}

func (s Server) loggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		s.Logger.Debugf("loggingMw: New incoming request %s %s from %s, UA: %s, TraceID: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), traceID)

		defer func() {
			if re := recover(); re != nil {
				s.Logger.Errorf("loggingMw: Handler crashed, err: %v, TraceID: %s, stack trace:\n%s", re, traceID, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Trace-Id", traceID)
		next.ServeHTTP(w, r.WithContext(setTraceContext(r.Context(), traceContext{traceID: traceID})))

		s.Logger.Tracef("loggingMw: Incoming request %s %s took %dms, TraceID: %s",
			r.Method, r.URL.Path, time.Since(start).Milliseconds(), traceID)
	})
}

// corsMw allows the configured browser origins and answers their preflight requests
// with 204. A "*" origin is answered with a literal "*", never the request's origin.
func (s Server) corsMw(next http.Handler) http.Handler {
	if len(s.CORSOrigins) == 0 {
		return next
	}
	return handlers.CORS(
		handlers.AllowedOrigins(s.CORSOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.ExposedHeaders([]string{"X-Trace-Id"}),
		handlers.AllowCredentials(),
		handlers.OptionStatusCode(http.StatusNoContent),
	)(next)
}

// authMw lets requests through that carry a valid catalog owner token.
func (s Server) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		lt := r.Header.Get("Authorization")
		if !strings.HasPrefix(lt, "Bearer ") {
			s.Logger.Debugf("authMw: Missing bearer token, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		lt = strings.TrimPrefix(lt, "Bearer ")
		token, err := jwt.Parse([]byte(lt),
			jwt.WithKey(jwa.HS256, s.AuthSecretKey),
			jwt.WithValidate(true),
			jwt.WithClock(jwt.ClockFunc(s.now)),
			jwt.WithIssuer(tokenIssuer),
		)
		if err != nil {
			s.Logger.Debugf("authMw: Failed to validate token, err: %v, TraceID: %s", err, tid)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if role, _ := token.Get(tokenRoleClaim); role != roleCatalogOwner {
			s.Logger.Debugf("authMw: Token has no catalog owner role, subject: %s, TraceID: %s", token.Subject(), tid)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		s.Logger.Debugf("authMw: Subject: %s, TraceID: %s", token.Subject(), tid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerContextKey{}, token.Subject())))
	})
}
