// Package main runs the hotel front desk: the canonical room inventory with
// its gRPC, HTTP and Telnet surfaces.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/config"
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/deskserver"
	"github.com/cory-johannsen/hotel/internal/frontend/handlers"
	"github.com/cory-johannsen/hotel/internal/frontend/telnet"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/hotel/travel"
	"github.com/cory-johannsen/hotel/internal/httpapi"
	"github.com/cory-johannsen/hotel/internal/observability"
	"github.com/cory-johannsen/hotel/internal/random"
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

	logger, err := observability.NewLogger(cfg.Logging, "deskserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	layout, err := loadLayout(cfg.Hotel)
	if err != nil {
		logger.Fatal("loading layout", zap.Error(err))
	}
	inv, err := inventory.New(layout)
	if err != nil {
		logger.Fatal("building inventory", zap.Error(err))
	}
	logger.Info("inventory loaded",
		zap.String("name", layout.Name),
		zap.Int("floors", layout.Floors()),
		zap.Int("rooms", inv.Count()),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	alloc := allocator.New(allocator.Options{
		MaxRoomsPerBooking:     cfg.Hotel.MaxRoomsPerBooking,
		ExhaustiveMaxRequest:   cfg.Hotel.ExhaustiveMaxRequest,
		ExhaustiveMaxAvailable: cfg.Hotel.ExhaustiveMaxAvailable,
		Costs: travel.Costs{
			PerFloor:    cfg.Hotel.FloorCost,
			PerPosition: cfg.Hotel.PositionCost,
		},
	})
	source := random.NewCryptoSource()
	if cfg.Hotel.RandomSeed != 0 {
		source = random.NewSeededSource(cfg.Hotel.RandomSeed)
		logger.Info("occupancy simulation seeded", zap.Uint64("seed", cfg.Hotel.RandomSeed))
	}
	manager := desk.NewManager(inv, alloc, logger, desk.Options{
		OccupancyProbability: cfg.Hotel.OccupancyProbability,
		Source:               source,
		Metrics:              metrics,
	})

	verifier := auth.NewVerifier(cfg.Admin.PasswordHash)
	if !verifier.Enabled() {
		logger.Warn("admin password not configured, admin operations disabled")
	}

	// gRPC
	grpcServer := deskserver.NewServer(manager, verifier, logger)

	// HTTP
	events := httpapi.NewEventStream(manager, cfg.HTTP.SSEReplay, logger)
	router := httpapi.NewRouter(httpapi.Deps{
		Desk:        manager,
		Verifier:    verifier,
		Events:      events,
		Metrics:     metrics,
		Gatherer:    reg,
		MetricsPath: cfg.HTTP.MetricsPath,
		Logger:      logger,
	})
	httpServer := httpapi.NewServer(router, events, cfg.HTTP.ShutdownTimeout, logger)

	// Telnet
	var unlock handlers.UnlockFunc
	if verifier.Enabled() {
		unlock = func(_ context.Context, password string) error {
			return verifier.Verify(password)
		}
	}
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewDeskHandler(manager, unlock, logger), logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr())
			if err != nil {
				return err
			}
			return grpcServer.Serve(lis)
		},
		StopFn: grpcServer.Stop,
	})
	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error { return httpServer.ListenAndServe(cfg.HTTP.Addr()) },
		StopFn:  httpServer.Stop,
	})
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: telnetAcceptor.ListenAndServe,
		StopFn:  telnetAcceptor.Stop,
	})

	logger.Info("front desk initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("grpc_addr", cfg.GRPC.Addr()),
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("front desk error", zap.Error(err))
	}
}

// loadLayout reads the layout file when configured, otherwise builds one
// from rooms_per_floor.
func loadLayout(cfg config.HotelConfig) (inventory.Layout, error) {
	if cfg.LayoutFile != "" {
		return inventory.LoadLayoutFromFile(cfg.LayoutFile)
	}
	layout := inventory.DefaultLayout()
	layout.RoomsPerFloor = cfg.RoomsPerFloor
	return layout, nil
}
