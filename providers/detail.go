package providers

import (
	"context"
	"errors"
	"fmt"

	"sportsledger/config"
	"sportsledger/ledger"
	"sportsledger/models"
)

// ErrThirdParty marks a failure reported by, or talking to, a provider API.
var ErrThirdParty = errors.New("provider: third-party error")

// BetDetailer fetches the provider's live view of one wager.
type BetDetailer interface {
	GetBetDetail(ctx context.Context, cred config.Credentials, rec models.WagerRecord) (*ledger.Projection, error)
}

// ThirdParty wraps err so it matches ErrThirdParty.
func ThirdParty(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrThirdParty, err)
}
