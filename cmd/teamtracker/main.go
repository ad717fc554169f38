package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"team-tracker/internal/api"
	"team-tracker/internal/bot"
	"team-tracker/internal/config"
	"team-tracker/internal/dates"
	"team-tracker/internal/repository"
	"team-tracker/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[info] no .env file, using environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	store := repository.NewStore(taskRepo, memberRepo)

	clock := dates.SystemClock(cfg.Location)
	taskSvc := service.NewTaskService(taskRepo, memberRepo, clock)
	reportSvc := service.NewReportService(taskRepo, memberRepo, goalRepo, clock)

	srv := api.NewServer(taskSvc, reportSvc, store, clock)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[info] http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	var botDone chan struct{}
	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg.TelegramToken, subscriberRepo, taskSvc, reportSvc, store, clock)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}

		scheduler := service.NewSchedulerService(cfg.Location)
		sendReports := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("report: %v", err)
			}
		}
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, sendReports); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
		closeTime := "09:00"
		if cfg.ReportTime != "" {
			if _, err := scheduler.ScheduleDaily(cfg.ReportTime, sendReports); err != nil {
				log.Fatalf("schedule daily report: %v", err)
			}
			closeTime = cfg.ReportTime
		}
		closeID, err := scheduler.ScheduleMonthly(1, closeTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendMonthClose(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("month close report: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("schedule month close: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("[info] next month close report at %s", scheduler.Next(closeID).Format(time.RFC3339))

		botDone = make(chan struct{})
		go func() {
			defer close(botDone)
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("bot stopped with error: %v", err)
			}
		}()
	} else {
		log.Println("[info] TELEGRAM_TOKEN not set, bot disabled")
	}

	log.Println("Team tracker started.")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if botDone != nil {
		select {
		case <-botDone:
		case <-shutdownCtx.Done():
		}
	}
	log.Println("Shutdown complete.")
}
