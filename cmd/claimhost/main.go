package main

import (
	"net/http"
	"time"

	"hoyo_assistant_bot/internal/infra/claimhost"
	"hoyo_assistant_bot/internal/infra/config"
	"hoyo_assistant_bot/internal/infra/hoyoapi"
	"hoyo_assistant_bot/internal/infra/logger"
)

// The claim host is the stateless remote end of the daily-claim dispatcher:
// it holds no database, receives credentials per request and talks to the
// HoYoLAB API from its own egress address.
func main() {
	cfg, err := config.LoadClaimHost()
	if err != nil {
		logger.Get().Fatalf("Could not load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get()

	server := claimhost.NewServer(hoyoapi.NewClient(log), cfg.GeetestSolverURL, log)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a claim run covers up to four games with retries
	}

	log.Infof("Claim host listening on %s", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Claim host stopped: %v", err)
	}
}
