package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", "", map[string]interface{}{
		"name": "amina", "email": "amina@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "amina", user["username"])
	assert.NotContains(t, user, "password")

	// Stored password is hashed, not the raw input.
	stored, err := env.store.GetUserByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]interface{}{
		"name": "amina", "email": "amina@example.com", "password": "s3cret-pass",
	}

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/auth/signup", "", payload).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/auth/signup", "", payload).Code)
}

func TestSignUpValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing email", map[string]interface{}{"name": "amina", "password": "s3cret-pass"}},
		{"bad email", map[string]interface{}{"name": "amina", "email": "nope", "password": "s3cret-pass"}},
		{"short password", map[string]interface{}{"name": "amina", "email": "a@b.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/signup", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w), "validation")
		})
	}
}

func TestLoginIssuesTokenForCreatedUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/signup", "", map[string]interface{}{
		"name": "amina", "email": "amina@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	user, err := env.store.GetUserByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "amina@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	tokenStr, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(env.cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestLoginDoesNotLeakWhichCredentialFailed(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/auth/signup", "", map[string]interface{}{
		"name": "amina", "email": "amina@example.com", "password": "s3cret-pass",
	}).Code)

	wrongPassword := env.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "amina@example.com", "password": "wrong-pass",
	})
	unknownEmail := env.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "nobody@example.com", "password": "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAddAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedAdmin(t)
	payload := map[string]interface{}{
		"name": "second", "email": "second@example.com", "password": "s3cret-pass",
	}

	w := env.do(t, http.MethodPost, "/admin", adminToken, payload)
	assert.Equal(t, http.StatusOK, w.Code)

	// A plain user is refused, with no admin created.
	userID := env.seedUser(t, "user@example.com")
	w = env.do(t, http.MethodPost, "/admin", env.tokenFor(t, userID), map[string]interface{}{
		"name": "third", "email": "third@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No token at all.
	w = env.do(t, http.MethodPost, "/admin", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
