package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://issuer.example"
	testClientID = "client-123"
)

func newRSAKeyPair(t *testing.T) (*rsa.PrivateKey, jwk.Key) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubJWK, err := jwk.FromRaw(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pubJWK.Set(jwk.KeyIDKey, "test-kid"))
	require.NoError(t, pubJWK.Set(jwk.AlgorithmKey, jwa.RS256))

	return priv, pubJWK
}

func newJWKSServer(t *testing.T, pub jwk.Key) *httptest.Server {
	t.Helper()

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, priv *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()

	tok := jwt.New()
	for k, v := range claims {
		require.NoError(t, tok.Set(k, v))
	}

	hdrs := jws.NewHeaders()
	require.NoError(t, hdrs.Set(jws.KeyIDKey, "test-kid"))

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, priv, jws.WithProtectedHeaders(hdrs)))
	require.NoError(t, err)

	return string(signed)
}

func accessClaims(overrides map[string]any) map[string]any {
	claims := map[string]any{
		jwt.IssuerKey:    testIssuer,
		"token_use":      "access",
		"client_id":      testClientID,
		"sub":            "user-123",
		"username":       "registrar",
		"scope":          "students:read",
		"cognito:groups": []string{"staff"},
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func makeAppWithMiddleware(v *CognitoVerifier) *fiber.App {
	app := fiber.New()
	app.Use(v.FiberMiddleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sub":      c.Locals("sub"),
			"username": c.Locals("username"),
			"scope":    c.Locals("scope"),
			"groups":   c.Locals("groups"),
		})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/ok", http.NoBody)
	if token != "" {
		req.Header.Set(accessTokenHeader, token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestNewCognitoVerifier_Validation(t *testing.T) {
	_, err := NewCognitoVerifier(CognitoConfig{})
	assert.EqualError(t, err, "Region is required")

	_, err = NewCognitoVerifier(CognitoConfig{Region: "us-east-1"})
	assert.EqualError(t, err, "UserPoolID is required")

	_, err = NewCognitoVerifier(CognitoConfig{Region: "us-east-1", UserPoolID: "pool"})
	assert.EqualError(t, err, "ClientID is required")
}

func TestNewCognitoVerifier_BuildsIssuerAndJWKSURL(t *testing.T) {
	v, err := NewCognitoVerifier(CognitoConfig{
		Region:     "us-east-1",
		UserPoolID: "us-east-1_ABC123",
		ClientID:   testClientID,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_ABC123", v.issuer)
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_ABC123/.well-known/jwks.json", v.jwksURL)
	assert.NotNil(t, v.cache)
	assert.NotNil(t, v.client)
}

func TestNewCognitoVerifierWithURLs_Validation(t *testing.T) {
	_, err := NewCognitoVerifierWithURLs(CognitoConfig{}, "iss", "jwks")
	assert.EqualError(t, err, "ClientID is required")

	_, err = NewCognitoVerifierWithURLs(CognitoConfig{ClientID: "cid"}, "", "jwks")
	assert.EqualError(t, err, "issuer is required")

	_, err = NewCognitoVerifierWithURLs(CognitoConfig{ClientID: "cid"}, "iss", "")
	assert.EqualError(t, err, "jwksURL is required")
}

func TestFiberMiddleware_MissingHeader_Unauthorized(t *testing.T) {
	v, err := NewCognitoVerifierWithURLs(CognitoConfig{ClientID: "cid"}, "issuer", "http://127.0.0.1:1/jwks")
	require.NoError(t, err)

	resp := doGet(t, makeAppWithMiddleware(v), "")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFiberMiddleware_JWKSFetchFailure_Unauthorized(t *testing.T) {
	jwksSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer jwksSrv.Close()

	v, err := NewCognitoVerifierWithURLs(CognitoConfig{ClientID: "cid"}, testIssuer, jwksSrv.URL)
	require.NoError(t, err)

	resp := doGet(t, makeAppWithMiddleware(v), "not-a-jwt")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFiberMiddleware_RejectsBadTokens(t *testing.T) {
	priv, pub := newRSAKeyPair(t)
	jwksSrv := newJWKSServer(t, pub)

	otherPriv, _ := newRSAKeyPair(t)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "definitely-not-a-jwt"},
		{"wrong issuer", signToken(t, priv, accessClaims(map[string]any{jwt.IssuerKey: "https://other.example"}))},
		{"id token", signToken(t, priv, accessClaims(map[string]any{"token_use": "id"}))},
		{"wrong client", signToken(t, priv, accessClaims(map[string]any{"client_id": "other-client"}))},
		{"wrong key", signToken(t, otherPriv, accessClaims(nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewCognitoVerifierWithURLs(CognitoConfig{ClientID: testClientID}, testIssuer, jwksSrv.URL)
			require.NoError(t, err)

			resp := doGet(t, makeAppWithMiddleware(v), tt.token)

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestFiberMiddleware_ValidToken_SetsLocals_AllowsRequest(t *testing.T) {
	priv, pub := newRSAKeyPair(t)
	jwksSrv := newJWKSServer(t, pub)

	v, err := NewCognitoVerifierWithURLs(CognitoConfig{ClientID: testClientID}, testIssuer, jwksSrv.URL)
	require.NoError(t, err)

	resp := doGet(t, makeAppWithMiddleware(v), signToken(t, priv, accessClaims(nil)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, "user-123", got["sub"])
	assert.Equal(t, "registrar", got["username"])
	assert.Equal(t, "students:read", got["scope"])
	assert.Equal(t, []any{"staff"}, got["groups"])
}
