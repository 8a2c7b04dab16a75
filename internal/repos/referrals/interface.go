package referrals

import (
	"context"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
)

type Referrals interface {
	// ReferrerOf returns the account that referred userID, if any.
	ReferrerOf(ctx context.Context, q pgutils.Queryer, userID uint64) (uint64, bool, error)
}
