package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"i4.energy/across/gsmlink/modem"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML configuration file")
	flag.String("serial-port", "", "Serial port to connect to the modem (discovered when empty)")
	flag.Int("baud-rate", modem.DefaultBaudRate, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("apn", "", "Access point name for the bearer profile")
	flag.Int("max-retries", 3, "Pings sent before giving up on the modem")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	if logLevel != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithLogger(logger).
		WithAPN(config.APN).
		WithMaxRetries(config.MaxRetries).
		WithRetryDelay(time.Second).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
			Discover: modem.DiscoverPort,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	m, err := modem.New(modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), time.Minute)
	err = m.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		logger.Error("Failed to connect to modem", "error", err)
		os.Exit(1)
	}

	if err := m.InitHTTP(context.Background()); err != nil {
		logger.Warn("Failed to open bearer, HTTP requests may fail", "error", err)
	}

	logger.Info("Starting GSM link", "modem", m)

	server := &Server{
		Logger: logger.With("component", "server"),
		Device: m,
	}
	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: server.Router(),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	logger.Info("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}
}
