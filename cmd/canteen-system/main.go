package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"canteen-system/internal/app/api"
	"canteen-system/internal/app/bootstrap"
	"canteen-system/internal/app/kitchen"
	"canteen-system/internal/app/subscriber"
	"canteen-system/internal/common/config"
	"canteen-system/internal/common/logger"
)

const modes = "api | kitchen-display | notification-subscriber"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "config.yml", "path to YAML config; missing file means defaults")
	port := flag.Int("port", 0, "api: http port, overrides http.port")
	flag.Parse()

	switch *mode {
	case "api", "kitchen-display", "notification-subscriber":
	default:
		fmt.Fprintln(os.Stderr, "--mode is required:", modes)
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	lg := logger.New("bootstrap", logger.WithLevel(cfg.Log.Level), logger.WithOutput(cfg.Log.Output))
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := bootstrap.Build(ctx, cfg, lg)
	if err != nil {
		lg.Error("startup_failed", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
	defer rt.Close()

	if err := run(ctx, *mode, rt, lg); err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		rt.Close()
		os.Exit(1)
	}
	lg.Info("service_stopped", map[string]any{"service": *mode})
}

func run(ctx context.Context, mode string, rt *bootstrap.Runtime, lg *logger.Logger) error {
	switch mode {
	case "api":
		lg.Info("service_started", map[string]any{"service": "api", "port": rt.Config.HTTP.Port})
		return api.Run(ctx, rt, rt.Config.HTTP.Port, lg.Named("api"))
	case "kitchen-display":
		lg.Info("service_started", map[string]any{"service": "kitchen-display"})
		return kitchen.Run(ctx, rt, lg.Named("kitchen-display"))
	default:
		lg.Info("service_started", map[string]any{"service": "notification-subscriber"})
		return subscriber.Run(ctx, rt, lg.Named("notification-subscriber"))
	}
}
