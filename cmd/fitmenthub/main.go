package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mft-data/fitmenthub/app/controllers"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/ai"
	"github.com/mft-data/fitmenthub/internal/pkg/cache"
	"github.com/mft-data/fitmenthub/internal/pkg/database"
	"github.com/mft-data/fitmenthub/internal/pkg/env"
	"github.com/mft-data/fitmenthub/internal/pkg/fieldconfig"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/jobqueue"
	"github.com/mft-data/fitmenthub/internal/pkg/lineage"
	"github.com/mft-data/fitmenthub/internal/pkg/review"
	"github.com/mft-data/fitmenthub/internal/pkg/router"
	"github.com/mft-data/fitmenthub/internal/pkg/storage"
)

func main() {
	app := NewApplication()

	// stop workers before the listener so in-flight jobs checkpoint cleanly
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewRepositories(database.GetDB())
	registry := fieldconfig.NewRegistry(repos.FieldConfig)

	store, err := storage.NewFromEnv()
	if err != nil {
		log.Fatalf("storage setup failed: %v", err)
	}

	recorder := lineage.NewRecorder(repos.Lineage)
	aiService := ai.NewServiceFromEnv()
	generator := fitment.NewGenerator(repos, recorder, aiService)
	reviewService := review.NewService(repos, recorder)

	manager := jobqueue.Initialize(jobqueue.Deps{
		Repos:     repos,
		Registry:  registry,
		Store:     store,
		Generator: generator,
		Review:    reviewService,
		Lineage:   recorder,
	})
	manager.Start()

	controllers.Initialize(controllers.Deps{
		Repos:     repos,
		Registry:  registry,
		Store:     store,
		Manager:   manager,
		Generator: generator,
		Review:    reviewService,
		Lineage:   recorder,
	})

	app := fiber.New(fiber.Config{
		AppName:   "FitmentHub",
		BodyLimit: env.GetEnvInt("MAX_UPLOAD_MB", 250) * 1024 * 1024,
	})

	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	router.InstallRouter(app, repos.Tenant)

	return app
}
