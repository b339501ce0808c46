package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/event-vote-go/config"
	controllers "github.com/phillip/event-vote-go/controllers"
	middleware "github.com/phillip/event-vote-go/middleware"
	store "github.com/phillip/event-vote-go/store"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, st store.Store) {
	// public
	r.POST("/auth/signup", controllers.SignUp(cfg, st))
	r.POST("/auth/login", controllers.Login(cfg, st))

	r.GET("/events", controllers.ListEvents(st))
	r.GET("/events/:id", controllers.GetEvent(st))
	r.GET("/events/:id/leaderboard", controllers.Leaderboard(st))
	r.GET("/events/:id/images", controllers.ListEventImages(st))
	r.POST("/events/:id/register", controllers.RegisterForEvent(st))

	r.GET("/images/:id", controllers.GetImage(st))
	r.POST("/images", controllers.AddImage(st))
	r.POST("/images/:id/vote", controllers.VoteImage(st))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	// protected (admin-only; requireAdmin runs inside each controller)
	auth := middleware.AuthMiddleware(cfg)

	admin := r.Group("/")
	admin.Use(auth)
	{
		admin.POST("/events", controllers.CreateEvent(st))
		admin.PUT("/events/:id", controllers.UpdateEvent(st))
		admin.DELETE("/events/:id", controllers.DeleteEvent(st))
		admin.POST("/admin", controllers.AddAdmin(cfg, st))
	}
}
