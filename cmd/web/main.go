package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/containment/internal/config"
	"github.com/tomz197/containment/internal/loop"
	"github.com/tomz197/containment/internal/loop/server"
	"github.com/tomz197/containment/internal/loop/webclient"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, config.GetEnv("LOG_LEVEL", "info"), "web")
	log.SetDefault(logger)

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	cfg, updates, stopWatch, err := config.LoadAndWatch(config.GetEnv("TUNING_FILE", ""), logger)
	if err != nil {
		logger.Fatal("Failed to load tuning", "err", err)
	}
	defer stopWatch()

	gameServer, err := server.NewServer(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create game server", "err", err)
	}
	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()
	go gameServer.Run(serverCtx)
	if updates != nil {
		go loop.ApplyTuning(serverCtx, gameServer, updates, logger)
	}

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("/ws", webclient.NewHandler(gameServer, webclient.Options{
		Logger:     logger,
		RewardCode: config.GetEnv("REWARD_CODE", ""),
		RewardURL:  config.GetEnv("REWARD_URL", ""),
	}))

	addr := net.JoinHostPort(host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting web server", "url", "http://"+addr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")
	gameServer.Shutdown(5 * time.Second)
	cancelServer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "err", err)
	}
}
