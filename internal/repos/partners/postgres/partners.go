package partners

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/partners"
)

var _ partners.Partners = (*partnersRepo)(nil)

type partnersRepo struct{}

func New() *partnersRepo {
	return &partnersRepo{}
}

func (r *partnersRepo) Find(ctx context.Context, q pgutils.Queryer, userID uint64) (partners.Partner, bool, error) {
	var p partners.Partner

	err := q.QueryRowContext(ctx, `
		SELECT user_id, partner_discount, registered_user_discount, referral_system_commission
		FROM partner_discounts
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.PartnerDiscount, &p.RegisteredUserDiscount, &p.ReferralCommission)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return partners.Partner{}, false, nil
		}

		return partners.Partner{}, false, fmt.Errorf("find partner: %w", err)
	}

	return p, true, nil
}
