package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/di"
	appointmentService "hemobook/internal/domains/appointment/service"
	"hemobook/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	svc := di.InitializeSweeper()

	interval := time.Duration(cfg.Scheduling.SweepIntervalSeconds) * time.Second

	log.Info().Dur("interval", interval).Msg("Starting up expiry sweeper.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep(ctx, svc)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal. Stopping expiry sweeper.")

			return
		case <-ticker.C:
			sweep(ctx, svc)
		}
	}
}

func sweep(ctx context.Context, svc appointmentService.Appointment) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()

	expired, err := svc.ExpireStale(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")

		return
	}

	log.Info().Int("expired", expired).Dur("took", time.Since(start)).Msg("expiry sweep complete")
}
