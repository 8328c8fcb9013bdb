package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer      = "pricecompare"
	tokenRoleClaim   = "role"
	roleCatalogOwner = "catalog_owner"
	adminSubject     = "admin"
)

// IssueToken signs a catalog owner token for subject valid for TokenTTL.
func (s Server) IssueToken(subject string) (string, time.Time, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	exp := now.Add(ttl)
	t, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Subject(subject).
		Issuer(tokenIssuer).
		IssuedAt(now).
		Expiration(exp).
		Claim(tokenRoleClaim, roleCatalogOwner).
		Build()
	if err != nil {
		return "", exp, errors.Wrapf(err, "error creating token for subject: %s", subject)
	}
	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", exp, errors.Wrapf(err, "error signing token for subject: %s", subject)
	}
	return string(signed), t.Expiration(), nil
}

func (s Server) authToken() http.HandlerFunc {
	type request struct {
		Password string `json:"password"`
	}
	type response struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		if len(s.AdminPasswordHash) == 0 {
			s.Logger.Debugf("authToken: Token issuance disabled, no admin password hash configured, TraceID: %s", tid)
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		req := request{}
		if !s.decodeJSON(w, r, "authToken", &req) {
			return
		}
		if err := bcrypt.CompareHashAndPassword(s.AdminPasswordHash, []byte(req.Password)); err != nil {
			s.Logger.Infof("authToken: Wrong admin password from %s, TraceID: %s", r.RemoteAddr, tid)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		token, exp, err := s.IssueToken(adminSubject)
		if err != nil {
			s.writeError(w, r, "authToken", err)
			return
		}
		s.writeJsonResponse(w, response{Token: token, ExpiresAt: exp}, http.StatusOK)
	}
}

func owner(ctx context.Context) string {
	subject, _ := ctx.Value(ownerContextKey{}).(string)
	return subject
}
