package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-vote-go/models"
	store "github.com/phillip/event-vote-go/store"
	utils "github.com/phillip/event-vote-go/utils"
)

type addImageInput struct {
	UserID  string `form:"userId" json:"userId" binding:"required"`
	EventID string `form:"eventId" json:"eventId" binding:"required"`
	Image   string `form:"image" json:"image"` // URL; optional when a file is attached
}

type voteInput struct {
	UserID string `json:"userId" binding:"required"`
}

// ---------------- ADD IMAGE ----------------
// Accepts either a multipart upload (file field "image", stored on
// Cloudinary) or a plain image URL. The caller must hold a registration for
// the event, and each registration allows at most three images.
func AddImage(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input addImageInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		imageURL := input.Image
		if fileHeader, err := c.FormFile("image"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
				return
			}
			imageURL, err = utils.UploadEntryImage(file, fileHeader)
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
				return
			}
		}
		if imageURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
			return
		}

		image := models.Image{
			ID:         primitive.NewObjectID(),
			UserID:     userID,
			EventID:    eventID,
			URL:        imageURL,
			Votes:      0,
			VoteRecord: []primitive.ObjectID{},
			CreatedAt:  time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := st.AddImage(ctx, &image); err != nil {
			switch err {
			case store.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "user not registered for event"})
			case store.ErrQuotaExceeded:
				c.JSON(http.StatusBadRequest, gin.H{"error": "you can't add more than 3 images"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add image"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "image added successfully", "image": image})
	}
}

// ---------------- GET ----------------
func GetImage(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		image, err := st.GetImage(ctx, imageID)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch image"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "image fetched successfully", "image": image})
	}
}

// ---------------- VOTE ----------------
func VoteImage(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}

		var input voteInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}
		voterID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := st.AddVote(ctx, imageID, voterID); err != nil {
			switch err {
			case store.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			case store.ErrAlreadyVoted:
				c.JSON(http.StatusBadRequest, gin.H{"error": "you have already voted for this image"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not vote for image"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "image voted successfully"})
	}
}
