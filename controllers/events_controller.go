package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
	store "github.com/phillip/event-vote-go/store"
	utils "github.com/phillip/event-vote-go/utils"
)

var eventLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

type eventInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Image       string   `json:"image" binding:"required"`
}

type registerInput struct {
	UserID string `json:"userId" binding:"required"`
}

// ---------------- CREATE ----------------
func CreateEvent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c, st) {
			return
		}

		var input eventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		now := time.Now()
		event := models.Event{
			ID:          primitive.NewObjectID(),
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
			Image:       input.Image,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := st.CreateEvent(ctx, &event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "event created successfully", "event": event})
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c, st) {
			return
		}

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input eventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		event := models.Event{
			ID:          eventID,
			Name:        input.Name,
			Description: input.Description,
			Price:       *input.Price,
			Image:       input.Image,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := st.UpdateEvent(ctx, &event); err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}

		updated, err := st.GetEvent(ctx, eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated event"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "event updated successfully", "event": updated})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c, st) {
			return
		}

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		existing, err := st.GetEvent(ctx, eventID)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
			return
		}

		if err := st.DeleteEvent(ctx, eventID); err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
			return
		}

		// Best effort; the record is already gone.
		if existing.Image != "" {
			if err := utils.DeleteFromCloudinary(existing.Image); err != nil {
				eventLogger.Warn().Err(err).Str("event_id", eventID.Hex()).Msg("could not delete event image")
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully", "id": eventID.Hex()})
	}
}

// ---------------- LIST ----------------
func ListEvents(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		events, err := st.ListEvents(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}
		if events == nil {
			events = []models.Event{}
		}

		c.JSON(http.StatusOK, gin.H{"message": "all events", "events": events})
	}
}

// ---------------- GET ----------------
func GetEvent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		event, err := st.GetEvent(ctx, eventID)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch event"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "event found", "event": event})
	}
}

// ---------------- REGISTER ----------------
func RegisterForEvent(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input registerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}
		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		user, err := st.GetUser(ctx, userID)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register for event"})
			return
		}

		event, err := st.GetEvent(ctx, eventID)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register for event"})
			return
		}

		// The registration is persisted whatever the payment intent came back
		// as; PENDING registrations are settled by the reconciler.
		order, err := utils.CreateOrder(user, event)
		if err != nil {
			eventLogger.Warn().Err(err).Str("event_id", eventID.Hex()).Str("user_id", userID.Hex()).
				Msg("payment order creation failed, registering anyway")
		}

		now := time.Now()
		registration := models.Registration{
			ID:            primitive.NewObjectID(),
			UserID:        userID,
			EventID:       eventID,
			PaymentStatus: "PENDING",
			ImageCount:    0,
			OrderRef:      order.Reference,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := st.CreateRegistration(ctx, &registration); err != nil {
			if err == store.ErrDuplicate {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user already registered for event"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register for event"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":      "registration created successfully",
			"registration": registration,
			"order":        order,
		})
	}
}

// ---------------- LEADERBOARD ----------------
// Images ranked by vote count, ascending by default (the documented
// behavior); pass ?order=desc for highest-first. Ties keep creation order.
func Leaderboard(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		images, err := st.Leaderboard(ctx, eventID, c.Query("order") == "desc")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare leaderboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "leaderboard prepared successfully", "ranking": images})
	}
}

// ---------------- EVENT IMAGES ----------------
func ListEventImages(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		images, err := st.ListEventImages(ctx, eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch images"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "all images fetched successfully", "images": images})
	}
}
