package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/partners"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePartners map[uint64]partners.Partner

func (f fakePartners) Find(_ context.Context, _ pgutils.Queryer, userID uint64) (partners.Partner, bool, error) {
	p, ok := f[userID]
	return p, ok, nil
}

type fakeReferrals map[uint64]uint64

func (f fakeReferrals) ReferrerOf(_ context.Context, _ pgutils.Queryer, userID uint64) (uint64, bool, error) {
	id, ok := f[userID]
	return id, ok, nil
}

type failingPartners struct{}

func (failingPartners) Find(context.Context, pgutils.Queryer, uint64) (partners.Partner, bool, error) {
	return partners.Partner{}, false, errors.New("db down")
}

func TestPolicy_Discount(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(
		fakePartners{
			10: {UserID: 10, PartnerDiscount: 5, RegisteredUserDiscount: 12, ReferralCommission: 20},
		},
		fakeReferrals{
			1: 10, // referred by partner
			2: 3,  // referred by a regular user
		},
	)

	tests := []struct {
		name   string
		userID uint64
		want   int
	}{
		{name: "partner gets own discount", userID: 10, want: 5},
		{name: "referred by partner", userID: 1, want: 12},
		{name: "referred by non partner", userID: 2, want: 0},
		{name: "no referral", userID: 4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := policy.Discount(context.Background(), nil, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_Commission(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(
		fakePartners{
			10: {UserID: 10, ReferralCommission: 20},
			11: {UserID: 11, ReferralCommission: -1},
			12: {UserID: 12, ReferralCommission: 0},
		},
		fakeReferrals{},
	)

	tests := []struct {
		name       string
		referrerID uint64
		want       int
	}{
		{name: "partner override", referrerID: 10, want: 20},
		{name: "partner without override uses default", referrerID: 11, want: 7},
		{name: "partner with zero commission", referrerID: 12, want: 0},
		{name: "regular user uses default", referrerID: 99, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := policy.Commission(context.Background(), nil, tt.referrerID, 7)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_PropagatesErrors(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(failingPartners{}, fakeReferrals{})

	_, err := policy.Discount(context.Background(), nil, 1)
	require.Error(t, err)

	_, err = policy.Commission(context.Background(), nil, 1, 5)
	require.Error(t, err)
}
