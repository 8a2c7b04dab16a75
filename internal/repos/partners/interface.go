package partners

import (
	"context"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
)

// Partner holds the discount and commission overrides of a partner account.
// A negative ReferralCommission means "use the global referral percentage".
type Partner struct {
	UserID                 uint64
	PartnerDiscount        int
	RegisteredUserDiscount int
	ReferralCommission     int
}

type Partners interface {
	Find(ctx context.Context, q pgutils.Queryer, userID uint64) (Partner, bool, error)
}
