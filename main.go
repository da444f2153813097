package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")

	if cfg.memSessions != nil {
		janitor := NewJanitor(cfg, cfg.janitorInterval)
		cfg.logger.Info("starting session janitor",
			"interval", cfg.janitorInterval.String(),
			"ttl", cfg.sessionTTL.String(),
		)
		janitor.Start()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", cfg.handlerChat)
	mux.HandleFunc("/api/search", cfg.handlerSearch)
	mux.HandleFunc("/api/config", cfg.handlerConfig)
	mux.Handle("/metrics", promhttp.Handler())

	handler := corsMiddleware(metricsMiddleware(mux))

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: handler,
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	err := server.ListenAndServe()
	if err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}
