package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecombi/dashboard/config"
	"github.com/ecombi/dashboard/internal/app"
	"github.com/ecombi/dashboard/internal/service"
	"github.com/ecombi/dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	output := flag.String("output", cfg.Data.ExportDir, "Output folder path")
	name := flag.String("name", "dashboard_snapshot", "Report file name prefix")
	flag.Parse()

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	path, err := run(cfg, log, *output, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func run(cfg *config.Config, log logger.Logger, output, name string) (string, error) {
	application := app.NewApp(cfg, app.WithLogger(log))
	if err := application.Initialize(); err != nil {
		return "", err
	}
	defer func() {
		_ = application.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.BuildSnapshot(ctx); err != nil {
		return "", err
	}

	snapshot, err := application.GetDashboardService().Snapshot()
	if err != nil {
		return "", err
	}

	return service.NewReportExporter(output, log).Export(name, snapshot)
}
