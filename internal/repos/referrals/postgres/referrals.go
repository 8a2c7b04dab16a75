package referrals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/referrals"
)

var _ referrals.Referrals = (*referralsRepo)(nil)

type referralsRepo struct{}

func New() *referralsRepo {
	return &referralsRepo{}
}

func (r *referralsRepo) ReferrerOf(ctx context.Context, q pgutils.Queryer, userID uint64) (uint64, bool, error) {
	var referrerID uint64

	err := q.QueryRowContext(ctx, `
		SELECT referral_id
		FROM user_referrals
		WHERE registered_user_id = $1
	`, userID).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("get referrer: %w", err)
	}

	return referrerID, true, nil
}
