package jobs

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	store "github.com/phillip/event-vote-go/store"
	utils "github.com/phillip/event-vote-go/utils"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "reconciler").Logger()

// ReconcilePayments settles PENDING registrations against the payment
// provider on a fixed interval. Registrations are created before the payment
// outcome is known, so this loop is what eventually moves them to
// CONFIRMED or FAILED. Blocks until ctx is cancelled.
func ReconcilePayments(ctx context.Context, st store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, st)
		}
	}
}

func runOnce(ctx context.Context, st store.Store) {
	cycle, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pending, err := st.ListRegistrationsByStatus(cycle, "PENDING")
	if err != nil {
		logger.Error().Err(err).Msg("could not list pending registrations")
		return
	}

	for _, reg := range pending {
		if reg.OrderRef == "" {
			continue
		}

		status, err := utils.GetOrderStatus(reg.OrderRef)
		if err != nil {
			if err == utils.ErrPaymentsNotConfigured {
				return
			}
			logger.Warn().Err(err).Str("order", reg.OrderRef).Msg("order status lookup failed")
			continue
		}

		switch status {
		case "CONFIRMED", "FAILED":
			if err := st.SetPaymentStatus(cycle, reg.ID, status); err != nil {
				logger.Error().Err(err).Str("registration", reg.ID.Hex()).Msg("could not update payment status")
				continue
			}
			logger.Info().Str("registration", reg.ID.Hex()).Str("status", status).Msg("registration settled")

			if status == "CONFIRMED" {
				notifyConfirmed(cycle, st, reg.UserID)
			}
		}
	}
}

func notifyConfirmed(ctx context.Context, st store.Store, userID primitive.ObjectID) {
	user, err := st.GetUser(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user", userID.Hex()).Msg("could not load user for confirmation email")
		return
	}
	body := "<p>Hi " + user.Username + ",</p><p>Your event registration payment has been confirmed.</p>"
	if err := utils.SendEmail(user.Email, user.Username, "Payment confirmed", body); err != nil {
		logger.Warn().Err(err).Str("user", userID.Hex()).Msg("could not send confirmation email")
	}
}
