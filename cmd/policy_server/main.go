package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/grpc/policyserver"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/monitoring"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	snapshot := flag.String("snapshot", "", "Snapshot to serve (empty to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	serverCfg := cfg.Server.PolicyServer

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = serverCfg.Port
	}
	if *host == "" {
		*host = serverCfg.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if *snapshot == "" {
		*snapshot = cfg.Training.SnapshotPath
	}
	if !*enableReflection {
		*enableReflection = serverCfg.EnableReflection
	}

	logger := common.SetupLogging(*logLevel, cfg.Logging.Format)

	snap, err := persistence.LoadFile(*snapshot)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *snapshot).Msg("Failed to load snapshot")
	}

	policy, err := policyserver.NewServer(snap, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create policy server")
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer, healthServer := policyserver.NewGRPCServer(policy, logger, *enableReflection)
	if *enableReflection {
		logger.Info().Msg("gRPC reflection enabled")
	}

	// Log level follows edits to the config file
	config.WatchConfig(func() {
		level := config.Get().Logging.Level
		zerolog.SetGlobalLevel(common.ParseLevel(level))
		logger.Info().Str("level", level).Msg("Config reloaded")
	})

	ctx, cancel := common.SignalContext(context.Background(), logger)
	defer cancel()

	if serverCfg.WatchSnapshot {
		go func() {
			err := persistence.Watch(ctx, *snapshot, logger, func(s agent.Snapshot) {
				if err := policy.Load(s); err != nil {
					logger.Warn().Err(err).Msg("Rejected reloaded snapshot")
				}
			})
			if err != nil {
				logger.Error().Err(err).Msg("Snapshot watcher stopped")
			}
		}()
	}

	monitor := monitoring.NewGoroutineMonitor(logger)
	monitor.RegisterCounter("suggestions", func() int64 {
		suggestions, _ := policy.Stats()
		return suggestions
	})
	monitor.RegisterCounter("reloads", func() int64 {
		_, reloads := policy.Stats()
		return reloads
	})
	go monitor.Run(ctx)

	go func() {
		logger.Info().Str("address", lis.Addr().String()).Int("states", snap.Table.Len()).Msg("Policy server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(policyserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Give ongoing requests time to complete
	time.Sleep(time.Duration(serverCfg.GracefulShutdownDelay) * time.Second)

	logger.Info().Msg("Gracefully stopping gRPC server")
	grpcServer.GracefulStop()
	logger.Info().Msg("Server shutdown complete")
}
