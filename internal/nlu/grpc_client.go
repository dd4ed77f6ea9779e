package nlu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/srt-bank/srtbank/internal/proto/nlu"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
)

// GrpcClient provides a gRPC client to the Python NLU sidecar that hosts the
// spaCy bank model.
type GrpcClient struct {
	conn   *grpc.ClientConn
	client nlu.NluServiceClient
	addr   string
	logger *slog.Logger
}

// GrpcClientConfig holds configuration for the gRPC client.
type GrpcClientConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultGrpcClientConfig returns default configuration.
func DefaultGrpcClientConfig() GrpcClientConfig {
	return GrpcClientConfig{
		Address:          getEnv("NLU_ADDR", "localhost:50051"),
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   10 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// NewGrpcClient creates a new gRPC client to the NLU sidecar.
func NewGrpcClient(addr string, logger *slog.Logger) (*GrpcClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultGrpcClientConfig()
	if addr != "" {
		cfg.Address = addr
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}

	// Build client connection (no network I/O yet).
	conn, err := grpc.NewClient(cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NLU sidecar at %s: %w", cfg.Address, err)
	}

	// Force a connection attempt during startup so we fail fast on bad endpoints.
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("NLU sidecar at %s not ready: %w", cfg.Address, err)
	}

	client := nlu.NewNluServiceClient(conn)

	logger.Info("Connected to NLU sidecar", "address", cfg.Address)

	return &GrpcClient{
		conn:   conn,
		client: client,
		addr:   cfg.Address,
		logger: logger,
	}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Close closes the gRPC connection.
func (c *GrpcClient) Close() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("failed to close gRPC connection", "error", err)
		}
	}
}

// Health checks if the NLU sidecar is healthy.
func (c *GrpcClient) Health(ctx context.Context) error {
	resp, err := c.client.Health(ctx, &nlu.HealthRequest{})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if !resp.GetOk() {
		return fmt.Errorf("NLU sidecar unhealthy: %s", resp.GetStatus())
	}
	return nil
}

// Classify runs the model over one utterance via the sidecar.
func (c *GrpcClient) Classify(ctx context.Context, utterance string) (Result, error) {
	cfg := DefaultGrpcClientConfig()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	resp, err := c.client.Classify(ctx, &nlu.ClassifyRequest{Utterance: utterance})
	if err != nil {
		c.logger.Error("Classify failed", "error", err)
		return Result{}, fmt.Errorf("classify request failed: %w", err)
	}

	result := Result{
		IntentScores: resp.GetIntentScores(),
	}
	for _, span := range resp.GetEntities() {
		kind := KindFromLabel(span.GetLabel())
		if kind == KindUnknown {
			continue
		}
		result.Entities = append(result.Entities, Entity{
			Kind: kind,
			Text: span.GetText(),
		})
	}
	return result, nil
}

// Ensure GrpcClient implements Classifier.
var _ Classifier = (*GrpcClient)(nil)

// Helper function.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
