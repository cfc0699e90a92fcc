// Package main runs a Telnet front desk console backed by a remote desk
// server over gRPC.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/config"
	"github.com/cory-johannsen/hotel/internal/deskserver"
	"github.com/cory-johannsen/hotel/internal/frontend/handlers"
	"github.com/cory-johannsen/hotel/internal/frontend/telnet"
	"github.com/cory-johannsen/hotel/internal/observability"
	"github.com/cory-johannsen/hotel/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "frontdesk")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting front desk console",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("deskserver_addr", cfg.GRPC.Addr()),
	)

	client, err := deskserver.Dial(cfg.GRPC.Addr())
	if err != nil {
		logger.Fatal("dialing desk server", zap.Error(err))
	}
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = client.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Fatal("desk server not serving", zap.String("addr", cfg.GRPC.Addr()), zap.Error(err))
	}

	deskHandler := handlers.NewDeskHandler(client, client.VerifyAdmin, logger)
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, deskHandler, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: telnetAcceptor.ListenAndServe,
		StopFn:  telnetAcceptor.Stop,
	})

	logger.Info("front desk console initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("console error", zap.Error(err))
	}
}
