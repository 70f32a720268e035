package ports

import (
	"context"
	"time"
)

// SignupNotifier tells the team about a new signup transaction.
type SignupNotifier interface {
	NotifySignup(ctx context.Context, txHash string) error
}

// Claimer grants a key to the first caller within ttl.
// It lets replicas agree on who handles a delivery without coordination.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
