package main

import (
	"context"
	"log/slog"
	"nova/app/client/analytics"
	"nova/app/client/genai"
	"nova/app/client/slack"
	"nova/app/config"
	"nova/app/service/engine"
	"nova/app/service/followup"
	"nova/app/service/queue"
	"nova/app/service/report"
	"nova/app/service/store"
	"nova/app/util/mylog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, analytics.NewClient)
	do.Provide(di, genai.NewClient)
	do.Provide(di, slack.NewClient)
	do.Provide(di, store.New)
	do.Provide(di, report.New)
	do.Provide(di, followup.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go func() {
		if err := do.MustInvoke[*engine.Service](di).Run(appCtx); err != nil && appCtx.Err() == nil {
			slog.Error("Engine stopped", "error", err)
			cancel()
		}
	}()

	<-appCtx.Done()
}
