package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"myflix/internal/config"
	"myflix/internal/logging"
	"myflix/internal/models"
	"myflix/internal/repositories"
	"myflix/internal/server"
	"myflix/internal/services"
	"myflix/pkg/objectstore"
	"myflix/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize Repositories ---
	userRepo, movieRepo, closeStore, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}
	defer closeStore()

	if cfg.SeedDemoData {
		seedMovies(ctx, movieRepo, &logger)
	}

	// --- Initialize Object Store and RabbitMQ Client ---
	store, err := objectstore.Open(ctx, cfg.StorageDriver, objectstore.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	var publisher services.EventPublisher
	if cfg.ImageEventsPublish {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.ImageEventsQueue}, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- Initialize Services ---
	svcs := server.Services{
		Auth:   services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry),
		Users:  services.NewUserService(userRepo),
		Movies: services.NewMovieService(movieRepo),
		Images: services.NewImageService(store, publisher, &logger),
	}

	app := server.New(cfg, svcs, &logger)

	// --- Start HTTP Server ---
	go func() {
		logger.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("error during fiber shutdown")
	}
	logger.Info().Msg("server gracefully stopped")
}

// openRepositories connects the configured backend. The returned func
// releases it.
func openRepositories(ctx context.Context, cfg *config.Config) (repositories.UserRepository, repositories.MovieRepository, func(), error) {
	switch cfg.DatabaseDriver {
	case "mongo":
		client, err := repositories.ConnectMongo(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.DatabaseName)
		userRepo, err := repositories.NewMongoUserRepository(ctx, db)
		if err != nil {
			disconnect(client)
			return nil, nil, nil, err
		}
		return userRepo, repositories.NewMongoMovieRepository(db), func() { disconnect(client) }, nil

	case "postgres", "sqlite":
		db, err := repositories.OpenGORM(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return repositories.NewGORMUserRepository(db), repositories.NewGORMMovieRepository(db), closeDB, nil

	default:
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryMovieRepository(), func() {}, nil
	}
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// seedMovies populates an empty movie collection with demo data.
func seedMovies(ctx context.Context, repo repositories.MovieRepository, logger *zerolog.Logger) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to check movies before seeding")
		return
	}
	if len(existing) > 0 {
		return
	}

	movies := []models.Movie{
		{
			Title:       "Inception",
			Description: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.",
			Genre:       models.Genre{Name: "Thriller", Description: "Thriller film is a genre that evokes excitement and suspense."},
			Director:    models.Director{Name: "Christopher Nolan", Bio: "British-American film director, producer, and screenwriter.", Birth: "1970"},
			Actors:      []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
			ImagePath:   "inception.png",
			Featured:    true,
		},
		{
			Title:       "The Shawshank Redemption",
			Description: "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
			Genre:       models.Genre{Name: "Drama", Description: "Drama film is a genre that relies on the emotional development of realistic characters."},
			Director:    models.Director{Name: "Frank Darabont", Bio: "Hungarian-American film director, screenwriter and producer.", Birth: "1959"},
			Actors:      []string{"Tim Robbins", "Morgan Freeman"},
			ImagePath:   "shawshank.png",
		},
		{
			Title:       "Gladiator",
			Description: "A former Roman General sets out to exact vengeance against the corrupt emperor who murdered his family.",
			Genre:       models.Genre{Name: "Action", Description: "Action film is a genre in which the protagonist is thrust into a series of events."},
			Director:    models.Director{Name: "Ridley Scott", Bio: "English film director and producer.", Birth: "1937"},
			Actors:      []string{"Russell Crowe", "Joaquin Phoenix"},
			ImagePath:   "gladiator.png",
		},
	}

	for i := range movies {
		if err := repo.Create(ctx, &movies[i]); err != nil {
			logger.Error().Err(err).Str("title", movies[i].Title).Msg("failed to seed movie")
			continue
		}
		logger.Info().Str("title", movies[i].Title).Str("id", movies[i].ID).Msg("seeded movie")
	}
}
