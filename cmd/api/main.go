package main

import (
	"context"
	"log"
	"os"
	"time"

	"closetlyapi/controllers"
	"closetlyapi/dbhelper"
	"closetlyapi/services"
	"closetlyapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	rcToken := os.Getenv("RC_WEBHOOK_TOKEN")
	if rcToken == "" {
		log.Fatal("RC_WEBHOOK_TOKEN environment variable is not set!")
	}
	err := sentry.Init(sentry.ClientOptions{
		// Either set your DSN here or set the SENTRY_DSN environment variable.
		Dsn:         os.Getenv("SENTRY_DSN"),
		Environment: services.GetEnv("ENV", "local"),
		Release:     "closetlygo@1.0.0",
		// Set TracesSampleRate to 1.0 to capture 100%
		// of transactions for performance monitoring.
		// We recommend adjusting this value in production,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	db := dbhelper.SetupDB()

	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")})
	asynqInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")})
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	awsService := &services.AWSService{}
	urlCache, err := services.NewURLCacheService(awsService, bucketName)
	if err != nil {
		log.Fatal("Failed to initialize URL cache service")
	}
	weatherService := &services.OpenMeteoService{}
	llmProcessor := &services.GoogleLLMProcessor{}

	e := controllers.SetupServer(
		db, services.GoogleService{}, awsService, urlCache,
		weatherService, llmProcessor, app,
		asynqClient, asynqInspector,
	)
	e.Debug = true
	if os.Getenv("TELEGRAM_BOT") == "true" {

		telegram.RunOutfitBot(e, db)

	} else {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(3)))
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())

		// Once it's done, you can attach the handler as one of your middleware
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
		e.Logger.Fatal(e.Start(":8083"))
	}
}
