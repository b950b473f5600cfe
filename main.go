package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	"github.com/mww/stats_proxy/cache"
	"github.com/mww/stats_proxy/config"
	"github.com/mww/stats_proxy/controller"
	"github.com/mww/stats_proxy/logging"
	"github.com/mww/stats_proxy/upstream"
	"github.com/mww/stats_proxy/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	settings, err := config.Load("")
	if err != nil {
		log.Fatalf("error loading settings: %v", err)
	}

	logger := logging.New(settings.LogLevel, settings.LogFormat)

	clock := clock.New()
	store, closeStore, err := newStore(settings, clock, logger)
	if err != nil {
		logger.Fatalf("error creating cache store: %v", err)
	}
	defer closeStore()

	upstreamClient, err := upstream.New(upstream.Config{
		AllPlayersURL:    settings.AllPlayersURL,
		LatestPlayersURL: settings.LatestPlayersURL,
		Timeout:          settings.UpstreamTimeout(),
		BreakerFailures:  settings.BreakerFailures,
		BreakerCooldown:  settings.BreakerCooldown,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatalf("error creating upstream client: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctrl, err := controller.New(settings, logger, upstreamClient, store, reg)
	if err != nil {
		logger.Fatalf("error creating a new controller: %v", err)
	}

	server, err := web.NewServer(settings, ctrl, logger, reg)
	if err != nil {
		logger.Fatalf("error creating new web server: %v", err)
	}

	shutdown := make(chan bool)
	wg := &sync.WaitGroup{}

	// Setup a handler to catch ctrl-c signals and properly shutdown everything.
	intChannel := make(chan os.Signal, 2)
	signal.Notify(intChannel, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-intChannel
		close(shutdown)

		if err := waitTimeout(wg, 10*time.Second); err != nil {
			logger.Errorf("timed out waiting for proper shutdown")
			os.Exit(255)
		}
	}()

	// Start the web server
	wg.Add(1)
	go server.ListenAndServe(shutdown, wg)

	// Wait for everything to stop, then let any pending cache writes land.
	wg.Wait()
	ctrl.Wait()
	logger.Info("server shutdown")
}

// Uses Redis when a url is configured and an in-memory store otherwise.
func newStore(settings *config.Settings, clk clock.Clock, logger *logrus.Logger) (cache.Store, func(), error) {
	if settings.RedisURL == "" {
		logger.Info("no redis url configured, using the in-memory cache")
		return cache.NewMemoryStore(clk), func() {}, nil
	}

	opts, err := redis.ParseURL(settings.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errors.Join(errors.New("cannot connect to redis"), err)
	}

	logger.WithField("addr", opts.Addr).Info("using the redis cache")
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warnf("error closing redis client: %v", err)
		}
	}
	return cache.NewRedisStore(client, clk), closeFn, nil
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	c := make(chan any)
	go func() {
		defer close(c)
		wg.Wait()
	}()

	select {
	case <-c:
		return nil // completed normally
	case <-time.After(timeout):
		return errors.New("timed out waiting")
	}
}
