package ports

import (
	"context"

	"github.com/goodcast/goodapi/pkg/domain"
)

// AccountVerifier checks that an access token belongs to a live Lens session.
type AccountVerifier interface {
	Verify(ctx context.Context, accessToken string) (bool, error)
}

// FrameSigner obtains a signature for a frame action from the signing service.
type FrameSigner interface {
	SignFrameAction(ctx context.Context, action domain.FrameAction, accessToken string) (*domain.SignedFrameAction, error)
}
