package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/event-vote-go/config"
	jobs "github.com/phillip/event-vote-go/jobs"
	routes "github.com/phillip/event-vote-go/routes"
	store "github.com/phillip/event-vote-go/store"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("mongodb is unreachable")
	}

	st := store.NewMongoStore(client, cfg.DBName)
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("could not create indexes")
	}

	r := gin.Default()
	r.Use(cors.Default())
	routes.SetupRoutes(r, cfg, st)

	go jobs.ReconcilePayments(context.Background(), st, 5*time.Minute)

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
