package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jschlyter/spc2mqtt/internal/cache"
	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/jschlyter/spc2mqtt/internal/homeassistant"
	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/jschlyter/spc2mqtt/internal/mqtt"
	"github.com/jschlyter/spc2mqtt/internal/spc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	loadTimeout    = 30 * time.Second
	loadRetryLimit = 2 * time.Minute
)

func main() {
	configFile := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(cfg.Log)

	gw, err := spc.New(spc.Config{
		APIURL:   cfg.SPC.APIURL,
		WSURL:    cfg.SPC.WSURL,
		Username: cfg.SPC.Username,
		Password: cfg.SPC.Password,
	}, logger)
	if err != nil {
		logger.Error("Failed to set up gateway client: %v", err)
		os.Exit(1)
	}

	store := &cache.Store{}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Fall back to the cached mirror when the gateway is unreachable at
	// boot; a background reload swaps in live state once it answers.
	restored := false
	if err := retryLoad(gw, logger, loadRetryLimit); err != nil {
		if !cfg.Cache || !restoreFromCache(gw, store, logger) {
			logger.Error("Failed to load panel state: %v", err)
			os.Exit(1)
		}
		restored = true
	} else if cfg.Cache {
		saveCache(gw, store, logger)
	}

	if info := gw.Info(); info != nil {
		logger.Info("Panel: %s", info)
	}
	for _, area := range gw.Areas() {
		logger.Info("Area %s", area)
		primeAreaMetrics(area)
	}
	for _, zone := range gw.Zones() {
		logger.Debug("Zone %s", zone)
		primeZoneMetrics(zone)
	}

	mqttClient := mqtt.NewMQTT(&cfg.MQTT, gw, logger)
	gw.OnUpdate(func(entity spc.Entity) {
		recordMetrics(entity)
		mqttClient.PublishUpdate(entity)
	})

	if err := gw.Start(); err != nil {
		logger.Error("Failed to start event stream: %v", err)
		os.Exit(1)
	}

	if err := mqttClient.Connect(); err != nil {
		logger.Error("Failed to connect to MQTT broker: %v", err)
		gw.Close()
		os.Exit(1)
	}

	if cfg.HomeAssistant.Discovery {
		homeassistant.New(cfg, mqttClient, gw, logger).Start()
	}

	if cfg.Metrics != "" {
		go serveMetrics(cfg.Metrics, logger)
	}

	if restored {
		go refreshFromGateway(gw, mqttClient, store, cfg, logger)
	}

	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Cache {
		saveCache(gw, store, logger)
	}
	mqttClient.Close()
	gw.Close()
}

// retryLoad calls Load under exponential backoff until it succeeds or limit
// elapses. A zero limit retries forever.
func retryLoad(gw *spc.Gateway, logger *log.Logger, limit time.Duration) error {
	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return gw.Load(ctx)
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = limit
	notify := func(err error, next time.Duration) {
		logger.Warning("Could not load panel state, retrying in %s: %v", next.Round(time.Second), err)
	}
	return backoff.RetryNotify(operation, policy, notify)
}

// refreshFromGateway keeps retrying the full load after a cache restore.
// Once the gateway answers, the restored mirror is replaced and the bridge
// republishes state and renews its command subscriptions and discovery.
func refreshFromGateway(gw *spc.Gateway, mqttClient *mqtt.MQTT, store *cache.Store, cfg *config.Config, logger *log.Logger) {
	if err := retryLoad(gw, logger, 0); err != nil {
		logger.Error("Failed to refresh panel state: %v", err)
		return
	}
	logger.Info("Gateway is reachable again, cached state replaced")
	if cfg.Cache {
		saveCache(gw, store, logger)
	}
	for _, area := range gw.Areas() {
		primeAreaMetrics(area)
	}
	for _, zone := range gw.Zones() {
		primeZoneMetrics(zone)
	}
	mqttClient.Resync()
	if cfg.HomeAssistant.Discovery {
		homeassistant.New(cfg, mqttClient, gw, logger).Start()
	}
}

func restoreFromCache(gw *spc.Gateway, store *cache.Store, logger *log.Logger) bool {
	data, err := store.Load()
	if err != nil {
		logger.Warning("Failed to load cache: %v", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := gw.Restore(data.Snapshot); err != nil {
		logger.Warning("Failed to restore cached state: %v", err)
		return false
	}
	logger.Info("Gateway unreachable, running from state cached at %s", data.SavedAt.Format(time.RFC3339))
	return true
}

func saveCache(gw *spc.Gateway, store *cache.Store, logger *log.Logger) {
	if err := store.Save(gw.Snapshot()); err != nil {
		logger.Warning("Failed to save cache: %v", err)
	} else {
		logger.Debug("Saved panel state to cache")
	}
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("Serving Prometheus metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics listener failed: %v", err)
	}
}
