package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	accessTokenHeader = "x-amzn-oidc-accesstoken"
	jwksTimeout       = 5 * time.Second
)

type CognitoConfig struct {
	Region     string
	UserPoolID string
	ClientID   string
}

// CognitoVerifier checks Cognito access tokens forwarded by the load balancer.
type CognitoVerifier struct {
	issuer  string
	jwksURL string
	cache   *jwk.Cache
	client  *http.Client
	cfg     CognitoConfig
}

func NewCognitoVerifier(cfg CognitoConfig) (*CognitoVerifier, error) {
	if cfg.Region == "" {
		return nil, errors.New("Region is required")
	}

	if cfg.UserPoolID == "" {
		return nil, errors.New("UserPoolID is required")
	}

	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID)

	return NewCognitoVerifierWithURLs(cfg, issuer, issuer+"/.well-known/jwks.json")
}

// NewCognitoVerifierWithURLs skips the Cognito URL scheme, for tests and
// non-AWS issuers.
func NewCognitoVerifierWithURLs(cfg CognitoConfig, issuer, jwksURL string) (*CognitoVerifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("ClientID is required")
	}

	if issuer == "" {
		return nil, errors.New("issuer is required")
	}

	if jwksURL == "" {
		return nil, errors.New("jwksURL is required")
	}

	client := &http.Client{Timeout: jwksTimeout}

	cache := jwk.NewCache(context.Background())
	if err := cache.Register(jwksURL, jwk.WithHTTPClient(client)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}

	return &CognitoVerifier{
		issuer:  issuer,
		jwksURL: jwksURL,
		cache:   cache,
		client:  client,
		cfg:     cfg,
	}, nil
}

func (v *CognitoVerifier) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(accessTokenHeader)
		if raw == "" {
			return fiber.ErrUnauthorized
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), jwksTimeout)
		defer cancel()

		keyset, err := v.cache.Get(ctx, v.jwksURL)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unable to load jwks")
		}

		tok, err := jwt.Parse(
			[]byte(raw),
			jwt.WithKeySet(keyset),
			jwt.WithValidate(true),
			jwt.WithIssuer(v.issuer),
			jwt.WithClaimValue("token_use", "access"),
		)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// access tokens carry the app client in "client_id", not "aud"
		if cid, ok := tok.Get("client_id"); !ok || cid != v.cfg.ClientID {
			return fiber.ErrUnauthorized
		}

		// request-scoped, gone once the handler returns
		if sub, ok := tok.Get("sub"); ok {
			c.Locals("sub", sub)
		}
		if username, ok := tok.Get("username"); ok {
			c.Locals("username", username)
		}
		if scope, ok := tok.Get("scope"); ok {
			c.Locals("scope", scope)
		}
		if groups, ok := tok.Get("cognito:groups"); ok {
			c.Locals("groups", groups)
		}

		return c.Next()
	}
}
