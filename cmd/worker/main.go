package main

import (
	"context"
	"log"
	"os"
	"stylemateapi/dbhelper"
	"stylemateapi/services"
	"stylemateapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{

		LogLevel: asynq.InfoLevel,
	})

	catalogTask, err := tasks.NewCatalogRefreshTask("countryroad")
	if err != nil {
		log.Fatalf("Failed to build catalog refresh task: %v", err)
	}
	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 4 * * *", // 4:00 AM daily, before the morning traffic
			task: catalogTask,
			desc: "Retailer catalog refresh",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue("catalog"))
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
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"process": 7,
			"catalog": 2,
		}},
	)
	awsService := &services.AWSService{}
	visionService := &services.GoogleVisionService{}
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("[Queue] Failed to initialize AWS provider: S3")
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc(tasks.TypeWardrobeItemProcessing, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleProcessWardrobeItemTask(ctx, t, db, visionService, awsService, app)
	})
	mux.HandleFunc(tasks.TypeCatalogRefresh, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleCatalogRefreshTask(ctx, t, db)
	})

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
