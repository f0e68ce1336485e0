package main

import (
	"context"
	"log"
	"os"

	"closetlyapi/dbhelper"
	"closetlyapi/services"
	"closetlyapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{

		LogLevel: asynq.InfoLevel,
	})

	dailyOutfitTask, err := tasks.NewDailyOutfitAlertTask()
	if err != nil {
		log.Fatalf("Failed to build daily outfit task: %v", err)
	}

	// Schedule daily tasks with different cron expressions
	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 8 * * *", // 8:00 AM daily, before people get dressed
			task: dailyOutfitTask,
			desc: "Daily outfit notifications",
		},
	}

	// Register all tasks
	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	// Initialize asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"generate": 7,
		}},
	)
	awsService := &services.AWSService{}
	llmProcessor := &services.GoogleLLMProcessor{}
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("[Queue] Failed to initialize AWS provider: S3")
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	// Set up task handler
	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc("generate:tryon", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleTryOnGenerationTask(ctx, t, db, llmProcessor, awsService, app)
	})
	mux.HandleFunc("generate:process_clothing", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleClothingProcessingTask(ctx, t, db, llmProcessor, awsService, app)
	})
	mux.HandleFunc("generate:avatar", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleFullBodyAvatarTask(ctx, t, db, llmProcessor, awsService, app)
	})
	mux.HandleFunc("outfits:daily_alert", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleDailyOutfitAlertTask(ctx, t, db, app)
	})

	go runScheduler()
	// Run the worker
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
