// internal/app/system/auth/auth.go

// Package auth turns an incoming bearer token into an authenticated
// principal in the request context. Token issuance belongs to the external
// identity source; this package only verifies signatures and loads the
// referenced user so revoked accounts take effect immediately.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	userstore "github.com/taskhubhq/taskhub/internal/app/store/users"
	"github.com/taskhubhq/taskhub/internal/app/system/timeouts"
	"github.com/taskhubhq/taskhub/internal/app/system/webjson"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Principal is the authenticated caller injected into request context.
type Principal struct {
	ID       primitive.ObjectID
	Username string
	Email    string
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentUser returns the principal and a found flag.
func CurrentUser(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// WithTestPrincipal injects a principal directly into the request context,
// bypassing token verification. For use in handler tests only.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

// UserFetcher loads the user referenced by a verified token subject.
type UserFetcher interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Verifier validates bearer tokens and resolves principals.
type Verifier struct {
	secret []byte
	users  UserFetcher
	log    *zap.Logger
}

// NewVerifier creates a Verifier with the shared signing secret.
func NewVerifier(secret string, users UserFetcher, logger *zap.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), users: users, log: logger}
}

// ParseSubject verifies the token and returns its subject as an ObjectID.
// Only HMAC-signed tokens are accepted; an unexpected signing method is a
// verification failure, not a fallback.
func (v *Verifier) ParseSubject(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return primitive.NilObjectID, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(sub)
}

// RequireAuth rejects requests without a valid bearer token and injects
// the principal for downstream handlers. Verification failures are 401;
// a user lookup infrastructure failure is 500.
func (v *Verifier) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			webjson.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := v.ParseSubject(raw)
		if err != nil {
			webjson.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		u, err := v.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				// Token subject no longer exists - fail closed.
				webjson.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			v.log.Error("principal lookup failed", zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		next.ServeHTTP(w, withPrincipal(r, &Principal{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		}))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
