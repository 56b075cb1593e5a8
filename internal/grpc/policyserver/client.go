package policyserver

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
)

// Client calls a remote PolicyService
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn // nil when the caller owns the connection
}

// Dial connects to a policy server without TLS
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) SuggestMove(ctx context.Context, pile int) (int, error) {
	out := new(wrapperspb.Int32Value)
	if err := c.cc.Invoke(ctx, SuggestMoveMethod, wrapperspb.Int32(int32(pile)), out); err != nil {
		return 0, err
	}
	return int(out.GetValue()), nil
}

// Snapshot fetches and decodes the served table
func (c *Client) Snapshot(ctx context.Context) (agent.Snapshot, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSnapshotMethod, &emptypb.Empty{}, out); err != nil {
		return agent.Snapshot{}, err
	}
	return persistence.FromStruct(out)
}

// Close closes the connection if the client opened it
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// RemoteAgent plays the moves suggested by a policy server
type RemoteAgent struct {
	agent.Tally
	name    string
	client  *Client
	timeout time.Duration
}

// NewRemoteAgent creates an agent backed by client. A zero timeout means
// no deadline per move.
func NewRemoteAgent(name string, client *Client, timeout time.Duration) *RemoteAgent {
	return &RemoteAgent{name: name, client: client, timeout: timeout}
}

func (r *RemoteAgent) Name() string { return r.name }

func (r *RemoteAgent) ChooseMove(pile int) (int, error) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	take, err := r.client.SuggestMove(ctx, pile)
	if err != nil {
		return 0, fmt.Errorf("remote policy: %w", err)
	}
	return take, nil
}

func (r *RemoteAgent) String() string { return r.Summary(r.name) }
