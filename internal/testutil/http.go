package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/taskhubhq/taskhub/internal/app/system/auth"
	"github.com/taskhubhq/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal builds an auth.Principal for a fixture user.
func Principal(u models.User) *auth.Principal {
	return &auth.Principal{ID: u.ID, Username: u.Username, Email: u.Email}
}

// WithPrincipal attaches p to the request context, bypassing the bearer
// token middleware.
func WithPrincipal(r *http.Request, p *auth.Principal) *http.Request {
	return auth.WithTestPrincipal(r, p)
}

// NewAuthenticatedRequest creates a request carrying p as the caller.
func NewAuthenticatedRequest(method, target string, p *auth.Principal) *http.Request {
	return WithPrincipal(httptest.NewRequest(method, target, nil), p)
}

// AnonymousPrincipal returns a principal for a user that exists nowhere in
// the database, for exercising not-a-member paths.
func AnonymousPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:       primitive.NewObjectID(),
		Username: "stranger",
		Email:    "stranger@example.com",
	}
}
