package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/securenotes/auth-service/auth"
	"github.com/securenotes/auth-service/internal/config"
	"github.com/securenotes/auth-service/mfa"
	"github.com/securenotes/auth-service/notes"
	mongonoterepo "github.com/securenotes/auth-service/notes/mongorepo"
	fakenoterepo "github.com/securenotes/auth-service/notes/repofake"
	"github.com/securenotes/auth-service/server"
	"github.com/securenotes/auth-service/token"
	"github.com/securenotes/auth-service/users"
	mongouserrepo "github.com/securenotes/auth-service/users/mongorepo"
	fakeuserrepo "github.com/securenotes/auth-service/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c)
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}
	displayAppname(c.GetAppName())

	userRepo, noteRepo, disconnect, err := connectStores(c)
	if err != nil {
		return fmt.Errorf("connectStores: %w", err)
	}
	defer disconnect()

	signer := token.NewHMACSigner(c.GetSigningSecret())
	tokens := token.New(signer,
		token.WithIssuer(c.GetAppName()),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetMFATokenExpiry()),
	)
	totpEngine := mfa.New(c.GetTOTPIssuer())

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo},
		totpEngine,
		tokens,
		auth.WithBcryptCost(c.GetBcryptCost()),
	)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	srv, err := server.New(c, authService, tokens, noteRepo)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// connectStores picks MongoDB when MONGO_URI is set and falls back to
// in-memory fakes otherwise, so the service runs standalone in dev.
func connectStores(c config.Config) (users.Repo, notes.Repo, func(), error) {
	uri := c.GetMongoURI()
	if uri == "" {
		log.Warn().Msg("MONGO_URI not set, using in-memory stores; data will not survive a restart")
		return fakeuserrepo.NewFakeUserRepo(), fakenoterepo.NewFakeNoteRepo(), func() {}, nil
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db := client.Database(c.GetMongoDatabase())
	userRepo, err := mongouserrepo.New(ctx, db)
	if err != nil {
		disconnect()
		return nil, nil, nil, fmt.Errorf("mongouserrepo.New: %w", err)
	}
	noteRepo, err := mongonoterepo.New(ctx, db)
	if err != nil {
		disconnect()
		return nil, nil, nil, fmt.Errorf("mongonoterepo.New: %w", err)
	}

	log.Info().Str("database", c.GetMongoDatabase()).Msg("connected to MongoDB")
	return userRepo, noteRepo, disconnect, nil
}

func configureLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
