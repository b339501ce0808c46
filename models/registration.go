package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Registration struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event_id"`
	PaymentStatus string             `bson:"payment_status" json:"payment_status"` // PENDING, CONFIRMED, FAILED
	ImageCount    int                `bson:"imagecount" json:"imagecount"`         // 0..3
	OrderRef      string             `bson:"order_reference,omitempty" json:"order_reference,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Order is the payment intent returned by the payment provider at registration time.
type Order struct {
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"` // CREATED, CONFIRMED, FAILED, UNAVAILABLE
	CreatedAt time.Time `json:"created_at"`
}
