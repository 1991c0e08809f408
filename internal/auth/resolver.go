package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
)

// Resolver maps an Authorization header to the calling user.
type Resolver struct {
	tokens *TokenService
}

// NewResolver constructs a Resolver backed by tokens.
func NewResolver(tokens *TokenService) *Resolver {
	return &Resolver{tokens: tokens}
}

// Resolve returns domain.ErrUnauthorized when the header carries no bearer
// token, or the token fails verification.
func (r *Resolver) Resolve(header string) (domain.CurrentUser, error) {
	token, ok := ExtractBearer(header)
	if !ok {
		return domain.CurrentUser{}, domain.ErrUnauthorized
	}
	claims, ok := r.tokens.Verify(token)
	if !ok {
		return domain.CurrentUser{}, domain.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.CurrentUser{}, domain.ErrUnauthorized
	}
	return domain.CurrentUser{
		UserID:   id,
		Email:    claims.Email,
		FullName: claims.FullName,
	}, nil
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u domain.CurrentUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (domain.CurrentUser, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.CurrentUser)
	return u, ok
}
