package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "profileClaims"

// Claims is the identity extracted from a verified access token.
type Claims struct {
	ID          string
	Email       string
	Fullname    string
	IsActivated bool
	Role        string
}

// HasRole reports whether the profile's role is in the allow-list.
func (c Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if r == c.Role {
			return true
		}
	}
	return false
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(claimsKey).(Claims); ok {
		return v
	}
	return Claims{}
}

// Subject returns the authenticated profile id, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	return FromContext(ctx).ID
}
