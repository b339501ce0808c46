package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
)

func testUserAndEvent() (*models.User, *models.Event) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "amina", Email: "amina@example.com"}
	event := &models.Event{ID: primitive.NewObjectID(), Name: "Contest", Price: 1500}
	return user, event
}

func TestCreateOrderWithoutProvider(t *testing.T) {
	t.Setenv("PAYMENT_API_URL", "")
	t.Setenv("PAYMENT_API_KEY", "")

	user, event := testUserAndEvent()
	order, err := CreateOrder(user, event)
	require.NoError(t, err)
	assert.NotEmpty(t, order.Reference)
	assert.Equal(t, 1500.0, order.Amount)
	assert.Equal(t, "CREATED", order.Status)
}

func TestCreateOrderAgainstProvider(t *testing.T) {
	var got orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	t.Setenv("PAYMENT_API_URL", srv.URL)
	t.Setenv("PAYMENT_API_KEY", "test-key")

	user, event := testUserAndEvent()
	order, err := CreateOrder(user, event)
	require.NoError(t, err)
	assert.Equal(t, "CREATED", order.Status)
	assert.Equal(t, order.Reference, got.Reference)
	assert.Equal(t, 1500.0, got.Amount)
	assert.Equal(t, "amina@example.com", got.Email)
}

func TestCreateOrderProviderFailureStillReturnsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv("PAYMENT_API_URL", srv.URL)
	t.Setenv("PAYMENT_API_KEY", "test-key")

	user, event := testUserAndEvent()
	order, err := CreateOrder(user, event)
	assert.Error(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "UNAVAILABLE", order.Status)
	assert.NotEmpty(t, order.Reference)
}

func TestGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ref-123", r.URL.Path)
		json.NewEncoder(w).Encode(orderResponse{Status: "CONFIRMED"})
	}))
	defer srv.Close()

	t.Setenv("PAYMENT_API_URL", srv.URL)
	t.Setenv("PAYMENT_API_KEY", "test-key")

	status, err := GetOrderStatus("ref-123")
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", status)
}

func TestGetOrderStatusUnconfigured(t *testing.T) {
	t.Setenv("PAYMENT_API_URL", "")
	t.Setenv("PAYMENT_API_KEY", "")

	_, err := GetOrderStatus("ref-123")
	assert.ErrorIs(t, err, ErrPaymentsNotConfigured)
}
