package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/fastprodman/paygate/internal/config"
	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	rows map[string]string
	err  error
}

func (s stubStore) All(context.Context) (map[string]string, error) {
	return s.rows, s.err
}

func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()

	got := SettingsFromConfig(config.ShopConfig{
		AppName:                  "Shop",
		PublicURL:                "https://shop.example/",
		HomePath:                 "/home",
		ServerLimitAfterPurchase: 2,
		ReferralMode:             "both",
		AlwaysGiveCommission:     true,
		ReferralPercentage:       5,
		CreditsDisplayName:       "Gems",
		SalesTaxPercent:          19,
	})

	assert.Equal(t, Settings{
		AppName:                  "Shop",
		PublicURL:                "https://shop.example",
		HomePath:                 "/home",
		ServerLimitAfterPurchase: 2,
		ReferralMode:             ReferralBoth,
		AlwaysGiveCommission:     true,
		ReferralPercentage:       5,
		CreditsDisplayName:       "Gems",
		SalesTaxPercent:          19,
	}, got)

	id := uuid.MustParse("6f1c1f9e-4a53-4a4e-9b0e-0f4d0a4f6a11")
	assert.Equal(t, "https://shop.example/payment/cancel", got.CancelURL())
	assert.Equal(t, "https://shop.example/payment/paypal/success?payment=6f1c1f9e-4a53-4a4e-9b0e-0f4d0a4f6a11", got.ReturnURL(id))
}

func TestStoreSettings_Overlay(t *testing.T) {
	t.Parallel()

	base := defaultSettings()
	provider := StoreSettings{
		Base: base,
		Store: stubStore{rows: map[string]string{
			KeyServerLimitAfterPurchase: "4",
			KeyReferralMode:             "commission",
			KeyAlwaysGiveCommission:     "true",
			KeyReferralPercentage:       " 12 ",
			KeyCreditsDisplayName:       "Gems",
			KeySalesTax:                 "7.5",
			"unrelated.key":             "ignored",
		}},
	}

	got, err := provider.Settings(t.Context())
	require.NoError(t, err)

	want := base
	want.ServerLimitAfterPurchase = 4
	want.ReferralMode = ReferralCommission
	want.AlwaysGiveCommission = true
	want.ReferralPercentage = 12
	want.CreditsDisplayName = "Gems"
	want.SalesTaxPercent = 7.5

	assert.Equal(t, want, got)
}

func TestStoreSettings_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := StoreSettings{Store: stubStore{err: boom}}.Settings(t.Context())
	require.ErrorIs(t, err, boom)

	_, err = StoreSettings{Store: stubStore{rows: map[string]string{KeyReferralPercentage: "ten"}}}.Settings(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyReferralPercentage)
}

func TestStaticSettings(t *testing.T) {
	t.Parallel()

	got, err := StaticSettings(defaultSettings()).Settings(t.Context())
	require.NoError(t, err)
	assert.Equal(t, defaultSettings(), got)
}

func TestSettings_CommissionDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode   ReferralMode
		always bool
		typ    products.ItemType
		first  bool
		want   bool
	}{
		{mode: ReferralCommission, typ: products.TypeCredits, first: true, want: true},
		{mode: ReferralBoth, typ: products.TypeCredits, first: true, want: true},
		{mode: ReferralCommission, typ: products.TypeCredits, want: false},
		{mode: ReferralCommission, always: true, typ: products.TypeCredits, want: true},
		{mode: ReferralCommission, always: true, typ: products.TypeServerSlots, first: true, want: false},
		{mode: ReferralSignUp, always: true, typ: products.TypeCredits, first: true, want: false},
		{mode: ReferralOff, always: true, typ: products.TypeCredits, first: true, want: false},
	}

	for _, tt := range tests {
		st := Settings{ReferralMode: tt.mode, AlwaysGiveCommission: tt.always}
		assert.Equal(t, tt.want, st.commissionDue(tt.typ, tt.first), "%+v", tt)
	}
}

func TestEnvironmentFor(t *testing.T) {
	t.Parallel()

	sandbox := config.PayPalConfig{Mode: config.PayPalModeSandbox}
	live := config.PayPalConfig{Mode: config.PayPalModeLive}

	assert.True(t, EnvironmentFor("local", sandbox).IsDebug())
	assert.False(t, EnvironmentFor("local", live).IsDebug())
	assert.False(t, EnvironmentFor("production", sandbox).IsDebug())
	assert.False(t, EnvironmentFor("", live).IsDebug())
}
