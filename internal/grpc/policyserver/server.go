package policyserver

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
)

// Server serves greedy moves from a value table that can be swapped while
// requests are in flight.
type Server struct {
	mu     sync.RWMutex
	snap   agent.Snapshot
	policy *agent.Policy

	suggestions atomic.Int64
	reloads     atomic.Int64

	logger zerolog.Logger
}

// NewServer creates a server for the given snapshot
func NewServer(snap agent.Snapshot, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		logger: logger.With().Str("component", "policy_server").Logger(),
	}
	if err := s.Load(snap); err != nil {
		return nil, err
	}
	s.reloads.Store(0)
	return s, nil
}

// Load replaces the served snapshot
func (s *Server) Load(snap agent.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	table := snap.Table.Clone()

	s.mu.Lock()
	s.snap = agent.Snapshot{
		ExplorationRate: snap.ExplorationRate,
		LearningRate:    snap.LearningRate,
		Table:           table,
	}
	s.policy = agent.NewPolicy("policy", table)
	s.mu.Unlock()

	s.reloads.Add(1)
	s.logger.Info().Int("states", table.Len()).Msg("Loaded value table")
	return nil
}

func (s *Server) SuggestMove(ctx context.Context, req *wrapperspb.Int32Value) (*wrapperspb.Int32Value, error) {
	pile := int(req.GetValue())
	if pile < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "pile must be at least 1, got %d", pile)
	}

	s.mu.RLock()
	policy := s.policy
	s.mu.RUnlock()

	take, err := policy.ChooseMove(pile)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to choose move: %v", err)
	}
	s.suggestions.Add(1)

	s.logger.Debug().Int("pile", pile).Int("take", take).Msg("Suggested move")
	return wrapperspb.Int32(int32(take)), nil
}

func (s *Server) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	doc, err := persistence.ToStruct(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode snapshot: %v", err)
	}
	return doc, nil
}

// Stats returns how many moves were suggested and how many times the table
// was replaced after startup.
func (s *Server) Stats() (suggestions, reloads int64) {
	return s.suggestions.Load(), s.reloads.Load()
}

// NewGRPCServer builds a grpc.Server with the logging and recovery
// interceptors, the policy service and a health service already marked as
// serving.
func NewGRPCServer(srv *Server, logger zerolog.Logger, enableReflection bool) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			RecoveryInterceptor(logger),
		),
	)
	RegisterPolicyServiceServer(grpcServer, srv)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if enableReflection {
		reflection.Register(grpcServer)
	}
	return grpcServer, healthServer
}
