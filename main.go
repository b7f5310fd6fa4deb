package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/initializer"
	logger "github.com/orchestrate-poc/endpoints/log"
	"github.com/orchestrate-poc/endpoints/metrics"
)

// Version is set at build time
var Version = "dev"

var log = logger.Get()
var mainLoggerTag = "ORCHESTRATE ENDPOINTS"
var mainLogger = log.WithField("prefix", mainLoggerTag)

var config configuration.Configuration

const shutdownTimeout = 10 * time.Second

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", "endpoints.conf", "Path to the config file")
	flag.StringVar(&confFile, "conf", "endpoints.conf", "Path to the config file")
	flag.Parse()

	mainLogger.Infof("Orchestrate endpoints %s starting", Version)

	if err := configuration.LoadConfig(confFile, &config); err != nil {
		mainLogger.Fatal(err)
	}
	// the level may come from .env, refresh it
	log = logger.Get()
	mainLogger = &logrus.Entry{Logger: log}
	mainLogger = mainLogger.Logger.WithField("prefix", mainLoggerTag)

	m := metrics.New()

	ticketStore, cacheStore, err := initializer.InitBackend(config.Cache)
	if err != nil {
		mainLogger.Fatal(err)
	}

	loader, err := initializer.LoadTickets(config, ticketStore)
	if err != nil {
		mainLogger.Fatal(err)
	}
	closeQuietly("ticket loader", loader)
	m.SetTicketsLoaded(len(ticketStore.GetAll()))

	checker, db := initializer.InitChecker(config.Database, cacheStore, m)

	api := &API{
		Tickets: ticketStore,
		Checker: checker,
		Auth:    config.Auth,
		Metrics: m,
	}

	server := &http.Server{
		Addr:         config.ListenAddress(),
		Handler:      api.Router(),
		ReadTimeout:  time.Duration(config.HttpServerOptions.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.HttpServerOptions.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		var err error
		if config.HttpServerOptions.UseSSL {
			mainLogger.Info("--> Using SSL (https) on ", server.Addr)
			err = server.ListenAndServeTLS(config.HttpServerOptions.CertFile, config.HttpServerOptions.KeyFile)
		} else {
			mainLogger.Info("--> Standard listener (http) on ", server.Addr)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	mainLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Error("Graceful shutdown failed")
	}

	if db != nil {
		if err := db.Close(); err != nil {
			mainLogger.WithError(err).Warn("error closing database connection")
		}
	}
	closeQuietly("cache", cacheStore)
}

// closeQuietly closes v when it holds a connection
func closeQuietly(what string, v interface{}) {
	closer, ok := v.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		mainLogger.WithError(err).Warn("error closing ", what)
	}
}
