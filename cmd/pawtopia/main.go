package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/pawtopia/internal/config"
	"github.com/Skotchmaster/pawtopia/internal/flows"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
	pkgdb "github.com/Skotchmaster/pawtopia/pkg/db"
	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
	deps   *flows.Deps
}

func main() {
	os.Exit(start())
}

func start() int {
	if len(os.Args) < 2 {
		usage()
		return 2
	}

	cfg := config.Load()
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel).With("app", "pawtopia")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.SessionDSN)
	cancel()
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("session_store_close_failed", "error", err)
		}
	}()

	kv, err := session.NewGormKV(ctx, db)
	if err != nil {
		log.Fatalf("init session store: %v", err)
	}
	store := session.New(kv)

	api, err := apiclient.New(apiclient.Options{
		BaseURL:    cfg.APIURL,
		Tokens:     store,
		Timeout:    cfg.HTTPTimeout,
		Retries:    cfg.HTTPRetries,
		RatePerSec: cfg.HTTPRatePerSec,
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}
	admin, err := apiclient.New(apiclient.Options{
		BaseURL:    cfg.AdminURL,
		Tokens:     store.Admin(),
		Timeout:    cfg.HTTPTimeout,
		Retries:    cfg.HTTPRetries,
		RatePerSec: cfg.HTTPRatePerSec,
	})
	if err != nil {
		log.Fatalf("admin client: %v", err)
	}

	a := &app{cfg: cfg, logger: logger, deps: flows.NewDeps(store, api, admin)}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			usage()
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}
