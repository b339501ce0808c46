package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	models "github.com/phillip/event-vote-go/models"
)

var paymentLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "payments").Logger()

// ErrPaymentsNotConfigured means no payment provider credentials are set.
var ErrPaymentsNotConfigured = errors.New("payment provider not configured")

type orderRequest struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Email     string  `json:"email"`
	Narrative string  `json:"narrative"`
}

type orderResponse struct {
	Status string `json:"status"`
}

// CreateOrder asks the payment provider for a payment intent covering the
// event price. Without provider credentials it returns a locally referenced
// order so development flows still work; callers persist the registration
// either way and let reconciliation settle the outcome.
func CreateOrder(user *models.User, event *models.Event) (*models.Order, error) {
	order := &models.Order{
		Reference: uuid.NewString(),
		Amount:    event.Price,
		Currency:  getenv("PAYMENT_CURRENCY", "KES"),
		Status:    "CREATED",
		CreatedAt: time.Now(),
	}

	apiURL := os.Getenv("PAYMENT_API_URL")
	apiKey := os.Getenv("PAYMENT_API_KEY")
	if apiURL == "" || apiKey == "" {
		return order, nil
	}

	payload := orderRequest{
		Reference: order.Reference,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Email:     user.Email,
		Narrative: "Registration for " + event.Name,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return order, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return order, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		paymentLogger.Warn().Err(err).Str("reference", order.Reference).Msg("order creation failed")
		order.Status = "UNAVAILABLE"
		return order, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		paymentLogger.Warn().Int("status", resp.StatusCode).Str("reference", order.Reference).Msg("order creation rejected")
		order.Status = "UNAVAILABLE"
		return order, fmt.Errorf("payment API error: %s", resp.Status)
	}

	return order, nil
}

// GetOrderStatus queries the provider for an order's settlement state.
// Used by the payment reconciler for PENDING registrations.
func GetOrderStatus(reference string) (string, error) {
	apiURL := os.Getenv("PAYMENT_API_URL")
	apiKey := os.Getenv("PAYMENT_API_KEY")
	if apiURL == "" || apiKey == "" {
		return "", ErrPaymentsNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/orders/"+reference, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment API error: %s", resp.Status)
	}

	var body orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Status, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
