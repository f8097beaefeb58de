package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/notifier"
	httptransport "github.com/goliatone/go-notification-list/pkg/transport/http"
	"github.com/joho/godotenv"
)

type flags struct {
	configPath string
	envFile    string
	logLevel   string
	render     bool
	userID     int64
	seed       bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to a YAML or JSON config file")
	flag.StringVar(&f.envFile, "env", ".env", "dotenv file loaded before reading NOTIFY_* variables")
	flag.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.BoolVar(&f.render, "render", false, "print the rendered list for -user and exit")
	flag.Int64Var(&f.userID, "user", 0, "user id used by -render and -seed (0 renders every user)")
	flag.BoolVar(&f.seed, "seed", false, "register demo types and notifications on start")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func run(f flags) error {
	if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	lgr := logger.New(logger.WithWriter(os.Stderr), logger.WithLevel(logger.ParseLevel(f.logLevel)))

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	providers, closeDB, err := openStorage(ctx, cfg.Storage, lgr)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			lgr.Warn("storage: close failed", logger.Field{Key: "error", Value: err})
		}
	}()

	module, err := notifier.NewModule(notifier.ModuleOptions{
		Config:      cfg,
		Storage:     providers,
		Logger:      lgr,
		Broadcaster: broadcaster.NewFanout(
			broadcaster.Logging{Logger: lgr.With(logger.Field{Key: "component", Value: "realtime"})},
		),
	})
	if err != nil {
		return fmt.Errorf("module: %w", err)
	}
	defer module.Close()

	if f.seed {
		seedUser := f.userID
		if seedUser <= 0 {
			seedUser = 1
		}
		if err := seed(ctx, module.Commands(), seedUser); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		lgr.Info("seeded demo notifications", logger.Field{Key: "user_id", Value: seedUser})
	}

	if f.render {
		var target *int64
		if f.userID > 0 {
			target = &f.userID
		}
		out, err := module.Render(ctx, target)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Println(out)
		return nil
	}

	if err := serve(module, cfg.HTTP, lgr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load(map[string]any{}, config.WithEnv(nil))
	}
	return config.LoadFile(path, config.WithEnv(nil))
}

func serve(module *notifier.Module, cfg config.HTTPConfig, lgr logger.Logger) error {
	router, err := httptransport.NewRouter(httptransport.Dependencies{
		Notifications: module.Manager(),
		Updates:       module.Events(),
		Widget:        module.Widget(),
		UserWidget:    module.WidgetFor,
		Preferences:   module.Preferences(),
		Logger:        lgr,
		Config:        cfg,
	})
	if err != nil {
		return err
	}
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lgr.Info("http: listening", logger.Field{Key: "addr", Value: cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	lgr.Info("http: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
