package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openretail/shopd/config"
	"github.com/openretail/shopd/internal/adminapi"
	"github.com/openretail/shopd/internal/app"
	"github.com/openretail/shopd/internal/auth"
	"github.com/openretail/shopd/internal/catalog"
	"github.com/openretail/shopd/internal/customers"
	"github.com/openretail/shopd/internal/inventory"
	"github.com/openretail/shopd/internal/orders"
	"github.com/openretail/shopd/internal/users"
	"github.com/openretail/shopd/internal/webserver"
)

var (
	confFile = flag.String("conf", "", "config file path")
	initCfg  = flag.Bool("initcfg", false, "write the default config file and exit")
	initDb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	if *initCfg {
		path := *confFile
		if path == "" {
			path = "shopd.yml"
		}
		if err := config.WriteDefault(path); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote default config to %s\n", path)
		return
	}

	cfg, err := config.LoadConfig(*confFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database reinitialized")
		return
	}

	db := application.DB()
	authn := auth.NewAuthenticator(db, cfg.Web.Secret, time.Duration(cfg.Web.JwtTTLMinutes)*time.Minute)

	server := webserver.Init(cfg, authn)
	adminapi.Init(&adminapi.Services{
		DB:        db,
		Catalog:   catalog.NewService(db),
		Customers: customers.NewService(db),
		Users:     users.NewService(db),
		Orders:    orders.NewService(db, inventory.NewLedger(), application.Bus()),
		Authn:     authn,
		Bus:       application.Bus(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Echo().Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server exit", zap.Error(err))
	}
}
