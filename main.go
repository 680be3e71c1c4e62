package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aliciawyy/MorningScraper/browser"
	"github.com/aliciawyy/MorningScraper/config"
	"github.com/aliciawyy/MorningScraper/fetch"
	"github.com/aliciawyy/MorningScraper/log"
	"github.com/aliciawyy/MorningScraper/search"
	"github.com/aliciawyy/MorningScraper/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var fetcher fetch.Fetcher = fetch.NewClient(cfg, logger)
	if cfg.Fetcher == config.FetcherBrowser {
		pool, err := browser.NewPool(cfg, logger)
		if err != nil {
			logger.Fatal("failed to start browser pool", zap.Error(err))
		}
		defer pool.Close()
		fetcher = pool
	}

	securities := security.NewService(fetcher, security.NewRegistry(), logger)
	service := search.NewService(cfg, fetcher, securities, logger)

	router := mux.NewRouter()
	router.HandleFunc("/search/{query}", service.HandleSearch).Methods("GET")
	router.HandleFunc("/quotes/{query}", service.HandleQuotes).Methods("GET")
	router.HandleFunc("/instrument", service.HandleInstrument).Methods("GET")

	listen := cfg.Listen
	if port := os.Getenv("PORT"); port != "" {
		listen = ":" + port // fallback for container platforms
	}

	handler := handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(os.Stdout, router))

	logger.Info("server listening", zap.String("addr", listen), zap.String("fetcher", cfg.Fetcher))
	if err := http.ListenAndServe(listen, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
