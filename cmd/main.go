package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidtracker/internal/handlers"
	"bidtracker/internal/logger"
	"bidtracker/internal/observability"
	"bidtracker/internal/remote"
	"bidtracker/internal/repository"
	"bidtracker/internal/server"
	"bidtracker/internal/service"

	"github.com/spf13/viper"
)

const defaultMonitorTick = 60 * time.Second

// @title        Bid Tracker API
// @version      1.0
// @description  Sales bid registry with best-effort spreadsheet sync.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config.yml first so the log level comes from it
	if err := loadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "error reading config:", err)
		os.Exit(1)
	}

	log := logger.Get(viper.GetString("log_level"))

	// open the persisted store
	repos, closeStore, err := openStore(log)
	if err != nil {
		log.Fatalw("failed to init store", "driver", viper.GetString("store.driver"), "err", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Errorw("failed to close store", "err", cerr)
		}
	}()

	// wire dependencies
	metrics := observability.New()
	gateway := remote.NewClient(sheetURLSource(repos), metrics)
	services := service.NewService(repos, gateway, service.Options{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
	})
	apiHandler := handlers.NewHandler(services, log, metrics)

	// seed the local account list before serving logins
	if err := services.Users.Bootstrap(context.Background()); err != nil {
		log.Fatalw("failed to bootstrap user list", "err", err)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the connectivity prober (via composed service)
	go services.Monitor.Run(ctx, monitorTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openStore initializes the configured KV backend and returns its closer.
func openStore(log *logger.Logger) (*repository.Repository, func() error, error) {
	switch driver := viper.GetString("store.driver"); driver {
	case "redis":
		kv, err := repository.NewKVRedis(context.Background(),
			viper.GetString("store.redis_addr"),
			viper.GetString("store.redis_password"),
			viper.GetInt("store.redis_db"))
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisRepository(kv), kv.Close, nil
	case "", "sqlite":
		path := viper.GetString("store.sqlite_path")
		if path == "" {
			log.Infow("store.sqlite_path not set in config; using default file", "default", "bidtracker.db")
			path = "bidtracker.db"
		}
		db, err := repository.InitDB(path)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store.driver %q", driver)
	}
}

// sheetURLSource reads the endpoint URL from the store on every call, so a URL
// saved through the settings screen takes effect without a restart.
func sheetURLSource(repos *repository.Repository) remote.URLSource {
	return func(ctx context.Context) string {
		value, ok, err := repos.KV.Get(ctx, repository.KeySheetURL)
		if err != nil || !ok {
			return ""
		}
		return value
	}
}

func monitorTick() time.Duration {
	if d := viper.GetDuration("monitor.interval"); d > 0 {
		return d
	}
	return defaultMonitorTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
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
