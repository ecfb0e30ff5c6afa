package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"
	"github.com/geordievannese/garuda-calculator/server/internal/config"
	"github.com/geordievannese/garuda-calculator/server/internal/database"
	logger "github.com/geordievannese/garuda-calculator/server/internal/logging"
	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/repository"
	"github.com/geordievannese/garuda-calculator/server/internal/router"
	"github.com/geordievannese/garuda-calculator/server/internal/services"

	"go.uber.org/zap"
)

// projectRoot is where config/, assets/ and logs/ live. The server is normally
// started from the server/ directory.
func projectRoot() string {
	if root := os.Getenv("GARUDA_ROOT"); root != "" {
		return root
	}
	return ".."
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func main() {
	root := projectRoot()

	// Load configuration
	if err := config.Init(root); err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	conf := config.Get()

	// Initialize Logger
	log, err := logger.Init(root, conf.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	config.Watch(log)

	// Load the calculator form at startup
	form, err := models.LoadFormDefinition(resolve(root, conf.Server.FormFile))
	if err != nil {
		log.Fatal("Failed to load form definition", zap.Error(err))
	}

	registry := metrics.NewRegistry()

	deps := router.Deps{
		Form:     form,
		Recorder: repository.NoopRecorder{},
		Metrics:  registry,
	}

	// The prediction log is optional
	if conf.Database.Enabled {
		db, err := database.Init(log, conf.Database)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		predictions := repository.NewPredictionRepository(db)
		deps.Recorder = predictions
		deps.History = predictions
	} else {
		log.Info("Database disabled, predictions will not be logged")
	}

	predictor := services.NewPredictorClient(log, conf.Predictor.URL, conf.Predictor.Timeout, registry).
		WithTimeoutFunc(func() time.Duration { return config.Get().Predictor.Timeout })
	defaults := form.Defaults()
	deps.Pages = repository.NewPageStore(conf.Server.PageTTL, func() *calculator.Controller {
		return calculator.NewController(log.Named("calculator"), predictor, registry, defaults)
	})

	scheduler := services.NewScheduler(log, deps.Pages, registry, time.Minute)
	scheduler.Start()
	defer scheduler.Stop()

	serverConf := *conf
	serverConf.Server.AssetsDir = resolve(root, conf.Server.AssetsDir)

	// Setup router, passing the logger to it
	r := router.Setup(log, &serverConf, deps)

	// Start the Gin server
	port := ":" + conf.Server.Port
	log.Info("Server listening on http://localhost"+port, zap.String("predictor", conf.Predictor.URL))
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
