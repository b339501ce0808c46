package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/event-vote-go/config"
	models "github.com/phillip/event-vote-go/models"
	store "github.com/phillip/event-vote-go/store"
	utils "github.com/phillip/event-vote-go/utils"
)

type signUpInput struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// requireAdmin resolves the authenticated caller against the admins
// collection. A missing admin record is an ordinary denial; a store failure
// is not, and must never be reported as one.
func requireAdmin(c *gin.Context, st store.Store) bool {
	callerID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := st.GetAdmin(ctx, callerID); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied, only admins can access this route"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "service unavailable"})
		}
		return false
	}
	return true
}

// ---------------- SIGNUP ----------------
func SignUp(cfg *config.Config, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input signUpInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), cfg.BcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		user := models.User{
			ID:        primitive.NewObjectID(),
			Username:  input.Name,
			Email:     input.Email,
			Password:  string(hashed),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := st.CreateUser(ctx, &user); err != nil {
			if err == store.ErrDuplicate {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user created successfully", "user": user})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Unknown email and wrong password produce the same response, so the
		// endpoint cannot be used to enumerate accounts.
		user, err := st.GetUserByEmail(ctx, input.Email)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "service unavailable"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		now := time.Now()
		claims := jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
	}
}

// ---------------- ADD ADMIN ----------------
func AddAdmin(cfg *config.Config, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c, st) {
			return
		}

		var input signUpInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data", "validation": utils.ValidationErrors(err)})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), cfg.BcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create admin"})
			return
		}

		admin := models.Admin{
			ID:        primitive.NewObjectID(),
			Username:  input.Name,
			Email:     input.Email,
			Password:  string(hashed),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := st.CreateAdmin(ctx, &admin); err != nil {
			if err == store.ErrDuplicate {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create admin"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "admin created successfully", "admin": admin})
	}
}
