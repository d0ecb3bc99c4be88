package main

import (
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thermolab/internal/gpio"
	"thermolab/internal/handlers"
	"thermolab/internal/logger"
	"thermolab/internal/mqtt"
	"thermolab/internal/repository"
	"thermolab/internal/repository/db"
	"thermolab/internal/sensor"
	"thermolab/internal/server"
	"thermolab/internal/service"
	"thermolab/internal/uart"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// hardware-facing deps: simulated sensor, in-memory pins, optional serial/mqtt
	deps := buildDeps(log)
	if closer, ok := deps.Port.(io.Closer); ok && closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if deps.Publisher != nil {
		defer deps.Publisher.Disconnect()
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, deps)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// control loops
	go services.Poller.Run(ctx, viper.GetDuration("poll_interval"))
	go services.Reporter.Run(ctx, viper.GetDuration("report_interval"))
	go services.Display.Run(ctx, viper.GetDuration("display_interval"))
	if services.Lights != nil {
		go services.Lights.Run(ctx)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "thermolab.db")
	viper.SetDefault("poll_interval", time.Second)
	viper.SetDefault("report_interval", 30*time.Second)
	viper.SetDefault("display_interval", time.Second)
	viper.SetDefault("ambient_f", 72.0)
	viper.SetDefault("serial.baud", uart.DefaultBaudRate)
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.client_id", "thermolab")
	viper.SetDefault("mqtt.topic", "thermolab/telemetry")
	viper.SetDefault("pins.red", 18)
	viper.SetDefault("pins.blue", 23)
	viper.SetDefault("pins.light", 16)
	viper.SetDefault("auth.signing_key", "asd234asd")

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvPrefix("thermolab")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// missing config file is fine; defaults and env cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// buildDeps assembles the sensor, GPIO, serial, and MQTT dependencies.
func buildDeps(log *logger.Logger) service.Deps {
	ambientC := sensor.FToC(viper.GetFloat64("ambient_f"))

	deps := service.Deps{
		Source:     sensor.NewSim("aht-sim", ambientC),
		Red:        gpio.NewLED(gpio.NewMemoryPin(viper.GetInt("pins.red"), true)),
		Blue:       gpio.NewLED(gpio.NewMemoryPin(viper.GetInt("pins.blue"), true)),
		LightPin:   gpio.NewMemoryPin(viper.GetInt("pins.light"), true),
		SigningKey: viper.GetString("auth.signing_key"),
		Log:        log,
	}

	if device := viper.GetString("serial.device"); device != "" {
		port, err := uart.Open(uart.PortConfig{
			Device:   device,
			BaudRate: viper.GetInt("serial.baud"),
		})
		if err != nil {
			log.Errorw("serial open failed; telemetry over uart disabled", "err", err, "device", device)
		} else {
			log.Infow("serial port open", "device", device, "baud", viper.GetInt("serial.baud"))
			deps.Port = port
		}
	}

	if broker := viper.GetString("mqtt.broker"); broker != "" {
		pub := mqtt.NewPublisher(mqtt.Config{
			Broker:   broker,
			Port:     viper.GetInt("mqtt.port"),
			ClientID: viper.GetString("mqtt.client_id"),
			Topic:    viper.GetString("mqtt.topic"),
			Username: viper.GetString("mqtt.username"),
			Password: viper.GetString("mqtt.password"),
		}, log)
		if err := pub.Connect(); err != nil {
			log.Errorw("mqtt connect failed; telemetry over mqtt disabled", "err", err, "broker", broker)
		} else {
			deps.Publisher = pub
		}
	}

	return deps
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
