package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/event-vote-go/config"
	models "github.com/phillip/event-vote-go/models"
	routes "github.com/phillip/event-vote-go/routes"
	store "github.com/phillip/event-vote-go/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	st := store.NewMemoryStore()
	r := gin.New()
	routes.SetupRoutes(r, cfg, st)
	return &testEnv{router: r, store: st, cfg: cfg}
}

// do issues a JSON request against the router. An empty token leaves the
// Authorization header unset.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) tokenFor(t *testing.T, id primitive.ObjectID) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(e.cfg.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e.cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedAdmin(t *testing.T) (primitive.ObjectID, string) {
	t.Helper()
	id := primitive.NewObjectID()
	err := e.store.CreateAdmin(context.Background(), &models.Admin{
		ID: id, Username: "root", Email: id.Hex() + "@admin.test", Password: "x", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return id, e.tokenFor(t, id)
}

func (e *testEnv) seedUser(t *testing.T, email string) primitive.ObjectID {
	t.Helper()
	id := primitive.NewObjectID()
	err := e.store.CreateUser(context.Background(), &models.User{
		ID: id, Username: "tester", Email: email, Password: "x", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) seedEvent(t *testing.T, name string, price float64) primitive.ObjectID {
	t.Helper()
	id := primitive.NewObjectID()
	now := time.Now()
	err := e.store.CreateEvent(context.Background(), &models.Event{
		ID: id, Name: name, Description: "test event", Price: price, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return id
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
