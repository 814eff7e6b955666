package oauthLocal

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// StaticBearerClient wraps base so every request carries
// "Authorization: Bearer <token>". A nil base gets HeaderPreservingClient.
func StaticBearerClient(ctx context.Context, token string, base *http.Client) *http.Client {
	if base == nil {
		base = HeaderPreservingClient()
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})

	ctx = WithBaseClient(ctx, base)
	return oauth2.NewClient(ctx, src)
}
