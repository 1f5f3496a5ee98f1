package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/telebot.v3"

	"hoyo_assistant_bot/internal/app"
	"hoyo_assistant_bot/internal/infra/claimhost"
	"hoyo_assistant_bot/internal/infra/config"
	idb "hoyo_assistant_bot/internal/infra/database"
	"hoyo_assistant_bot/internal/infra/hoyoapi"
	"hoyo_assistant_bot/internal/infra/logger"
	"hoyo_assistant_bot/internal/infra/scheduler"
	"hoyo_assistant_bot/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Could not load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get()
	log.Infof("HoYo assistant bot starting (environment: %s)", cfg.Environment)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	userRepo := idb.NewPostgresUserRepository(db)
	claimRepo := idb.NewPostgresDailyClaimRepository(db)
	genshinNotesRepo := idb.NewPostgresGenshinNotesRepository(db)
	starrailNotesRepo := idb.NewPostgresStarrailNotesRepository(db)
	zzzNotesRepo := idb.NewPostgresZZZNotesRepository(db)

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			if c != nil && c.Chat() != nil {
				log.WithError(err).Errorf("Telegram update failed in chat %d", c.Chat().ID)
				return
			}
			log.WithError(err).Error("Telegram update failed")
		},
	})
	if err != nil {
		log.Fatalf("Could not create Telegram bot: %v", err)
	}
	notifier := telegram.NewTelebotNotifier(bot)

	apiClient := hoyoapi.NewClient(log)
	gameAPI := hoyoapi.NewService(apiClient, userRepo, cfg.GeetestSolverURL, log)

	executors := []app.ClaimExecutor{app.NewLocalExecutor(gameAPI)}
	for _, host := range cfg.DailyRewardAPIList {
		executors = append(executors, claimhost.NewClient(host, userRepo, log))
	}
	claimService := app.NewDailyClaimService(claimRepo, executors, notifier, cfg.UserDelay, log)

	checkers := []app.NotesChecker{
		app.NewGenshinChecker(genshinNotesRepo, gameAPI, log),
		app.NewStarrailChecker(starrailNotesRepo, gameAPI, log),
		app.NewZZZChecker(zzzNotesRepo, gameAPI, log),
	}
	notesService := app.NewNotesService(checkers, notifier, cfg.UserDelay, log)

	purgeService := app.NewPurgeService(userRepo, claimRepo,
		genshinNotesRepo, starrailNotesRepo, zzzNotesRepo, cfg.ExpiredUserDays, log)

	sched := scheduler.New(claimService, notesService, purgeService,
		cfg.ClaimIntervalMinutes, cfg.NotesIntervalMinutes,
		cfg.MaintenanceStart, cfg.MaintenanceEnd, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("Could not start scheduler: %v", err)
	}

	go bot.Start()
	log.Info("Bot and scheduler are running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	sched.Stop()
	bot.Stop()
	log.Info("Shut down gracefully")
}
