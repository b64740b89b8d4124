package main

import (
	"auravindex/internal/lending/bootstrap"
	"auravindex/internal/lending/handler"
	"auravindex/pkg/app"
	"auravindex/pkg/audit"
	"auravindex/pkg/config"
)

const ServiceName = "lending"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Lending service")
	lending, err := bootstrap.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize lending service", "error", err)
	}

	auditor := audit.Tee{
		audit.NewLogAuditor(cfg.Log),
		audit.NewMongoAuditor(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.WriteTimeout),
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(lending.Service, auditor, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.OnShutdown(func() {
		if err := lending.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}
