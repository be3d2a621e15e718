package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"NextDay/internal/config"
	"NextDay/internal/metrics"
	"NextDay/internal/notifier"
	"NextDay/internal/scheduler"
	"NextDay/internal/server"
	"NextDay/internal/session"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the housekeeping jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg, runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run the purge and sweep jobs once at startup")
	return cmd
}

func runServe(cfg *config.Config, runOnStart bool) error {
	log.Println("[INFO] NextDay starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	met := metrics.NewMetrics(prometheus.DefaultRegisterer)
	col, cache, err := buildCollector(cfg, met)
	if err != nil {
		return err
	}
	defer cache.Close()

	mgr := session.NewManager(col, newSelector(cfg, 0), met)

	sched := scheduler.NewScheduler(ctx, cache, mgr, met, cfg.Cache.TTL, cfg.Schedule.SessionIdle)
	if err := sched.RegisterAll(cfg.Schedule.PurgeCron, cfg.Schedule.SweepCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()
	if runOnStart {
		log.Println("[INFO] run-on-start enabled, executing jobs now")
		go sched.RunNow()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(mgr, met).ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Telegram.BotToken != "" {
		bot := notifier.NewTelegramBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Proxy)
		cmds := notifier.NewCommands(mgr)
		g.Go(func() error {
			bot.StartPolling(gctx, cmds.Handle)
			return nil
		})
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] telegram.bot_token not set, bot disabled")
	}

	log.Println("[INFO] NextDay is running. Press Ctrl+C to stop.")
	err = g.Wait()
	log.Println("[INFO] NextDay stopped")
	return err
}
