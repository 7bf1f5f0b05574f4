package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aquanqa/aquanqa/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

func signedToken(t *testing.T, secret string, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoUserHandler(captured **int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	var seen *int
	handler := AuthMiddleware(testConfig())(echoUserHandler(&seen))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, 42))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, 42, *seen)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	handler := AuthMiddleware(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + signedToken(t, "other-secret", 42),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	var seen *int
	handler := OptionalAuthMiddleware(testConfig())(echoUserHandler(&seen))

	// Anonymous passes through with no identity.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, seen)

	// Invalid token is treated as anonymous, not rejected.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "other-secret", 7))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, seen)

	// Valid token attaches the user.
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, 7))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, 7, *seen)
}

func TestUserIDFromToken(t *testing.T) {
	cfg := testConfig()

	assert.Nil(t, UserIDFromToken("", cfg))
	assert.Nil(t, UserIDFromToken("bogus", cfg))

	userID := UserIDFromToken(signedToken(t, testSecret, 99), cfg)
	require.NotNil(t, userID)
	assert.Equal(t, 99, *userID)
}
