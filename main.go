package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pocketbot/src-server/handler"
	"pocketbot/src-server/metric"
	"pocketbot/src-server/model"
	"pocketbot/src-server/route"
	"pocketbot/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// AppState holds the database, the discord session, the pocket client and
	// the command table every handler is registered into.
	as := utils.NewAppState()

	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// fill the command table, then tell discordgo where to send events
	handler.Init(as)
	as.DgSession.AddHandler(handler.MessageCreate(as))
	as.DgSession.AddHandler(handler.MessageReactionAdd(as))

	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open discord connection", "error", err)
		os.Exit(1)
	}

	metric.Init(as.BunDB, as.DgSession, as.Config.GetMetricCollectionInterval(), as.CreateGracefulShutdownChan())

	// http server: pocket callback + metrics
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	authorizeMuxer := http.NewServeMux()
	route.Authorize(authorizeMuxer, as)
	limiter := route.NewRateLimiter(as.Config.GetWebhookRateLimit(), as.Config.GetWebhookRateBurst())
	muxer.Handle("/authorize", limiter.Middleware(authorizeMuxer))
	muxer.Handle("/authorize/", limiter.Middleware(authorizeMuxer))

	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           route.AccessLog(muxer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("gracefully shutting down...", "uptime", as.GetUptime())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	as.GracefulShutdown()
}
