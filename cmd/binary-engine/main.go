package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/app/background"
	"github.com/LavaJover/shvark-binary-engine/internal/app/setup"
	"github.com/LavaJover/shvark-binary-engine/internal/config"
	"github.com/LavaJover/shvark-binary-engine/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-binary-engine/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "binary.Engine"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	zlog, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to init dependencies", zap.Error(err))
	}
	defer deps.Close()

	uc := setup.InitializeUseCases(deps)

	// gRPC: health only; callers reach the engine through the volume topic
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcapi.UnaryInterceptor(zlog.Named("grpc"))))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		zlog.Fatal("failed to listen", zap.Error(err))
	}
	go func() {
		zlog.Info("grpc server started", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Error("grpc server stopped", zap.Error(err))
		}
	}()

	// Metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Volume events
	if cfg.KafkaService.ConsumerEnabled {
		go func() {
			if err := uc.VolumeConsumer.Run(ctx); err != nil {
				zlog.Error("volume consumer stopped", zap.Error(err))
			}
			if ctx.Err() == nil {
				healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
			}
		}()
	}

	// Pairing sweep
	tasks := background.NewBackgroundTasks(ctx, uc.CommissionEngine, zlog.Named("background"))
	if cfg.Sweep.Enabled {
		if err := tasks.ScheduleSweep(cfg.Sweep.Spec); err != nil {
			zlog.Fatal("failed to schedule sweep", zap.Error(err))
		}
	}
	tasks.StartAll()

	<-ctx.Done()
	zlog.Info("shutting down")

	healthServer.Shutdown()
	tasks.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("metrics server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
}
