// Package partner derives the discount a buyer gets and the commission a
// referrer earns from partner agreements and referral links.
package partner

import (
	"context"
	"fmt"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/partners"
	"github.com/fastprodman/paygate/internal/repos/referrals"
)

type Policy struct {
	partners  partners.Partners
	referrals referrals.Referrals
}

func NewPolicy(p partners.Partners, r referrals.Referrals) *Policy {
	return &Policy{partners: p, referrals: r}
}

// Discount returns the percentage userID gets off catalog prices: their own
// partner discount, else the registered-user discount of the partner that
// referred them, else 0.
func (p *Policy) Discount(ctx context.Context, q pgutils.Queryer, userID uint64) (int, error) {
	own, ok, err := p.partners.Find(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("find partner: %w", err)
	}

	if ok {
		return own.PartnerDiscount, nil
	}

	referrerID, ok, err := p.referrals.ReferrerOf(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("find referrer: %w", err)
	}

	if !ok {
		return 0, nil
	}

	ref, ok, err := p.partners.Find(ctx, q, referrerID)
	if err != nil {
		return 0, fmt.Errorf("find referrer partner: %w", err)
	}

	if !ok {
		return 0, nil
	}

	return ref.RegisteredUserDiscount, nil
}

// Commission returns the percentage referrerID earns on a referred purchase.
// Partners with a non-negative override use it; everyone else gets
// defaultPercent.
func (p *Policy) Commission(ctx context.Context, q pgutils.Queryer, referrerID uint64, defaultPercent int) (int, error) {
	ref, ok, err := p.partners.Find(ctx, q, referrerID)
	if err != nil {
		return 0, fmt.Errorf("find partner: %w", err)
	}

	if ok && ref.ReferralCommission >= 0 {
		return ref.ReferralCommission, nil
	}

	return defaultPercent, nil
}
