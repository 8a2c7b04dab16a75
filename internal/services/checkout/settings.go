package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fastprodman/paygate/internal/config"
	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/fastprodman/paygate/internal/repos/settings"
	"github.com/google/uuid"
)

type ReferralMode string

const (
	ReferralOff        ReferralMode = "off"
	ReferralCommission ReferralMode = "commission"
	ReferralSignUp     ReferralMode = "sign-up"
	ReferralBoth       ReferralMode = "both"
)

// Keys of the settings table rows that override the environment defaults.
const (
	KeyServerLimitAfterPurchase = "user.server_limit_after_irl_purchase"
	KeyReferralMode             = "referral.mode"
	KeyAlwaysGiveCommission     = "referral.always_give_commission"
	KeyReferralPercentage       = "referral.percentage"
	KeyCreditsDisplayName       = "system.credits_display_name"
	KeySalesTax                 = "payments.sales_tax"
)

const (
	successPath = "/payment/paypal/success"
	cancelPath  = "/payment/cancel"
)

// Settings is every knob the checkout flow reads, resolved once per call.
type Settings struct {
	AppName                  string
	PublicURL                string
	HomePath                 string
	ServerLimitAfterPurchase int64
	ReferralMode             ReferralMode
	AlwaysGiveCommission     bool
	ReferralPercentage       int
	CreditsDisplayName       string
	SalesTaxPercent          float64
}

func SettingsFromConfig(c config.ShopConfig) Settings {
	return Settings{
		AppName:                  c.AppName,
		PublicURL:                strings.TrimRight(c.PublicURL, "/"),
		HomePath:                 c.HomePath,
		ServerLimitAfterPurchase: c.ServerLimitAfterPurchase,
		ReferralMode:             ReferralMode(c.ReferralMode),
		AlwaysGiveCommission:     c.AlwaysGiveCommission,
		ReferralPercentage:       c.ReferralPercentage,
		CreditsDisplayName:       c.CreditsDisplayName,
		SalesTaxPercent:          c.SalesTaxPercent,
	}
}

func (s Settings) CancelURL() string {
	return s.PublicURL + cancelPath
}

func (s Settings) ReturnURL(paymentID uuid.UUID) string {
	return s.PublicURL + successPath + "?" + url.Values{"payment": {paymentID.String()}}.Encode()
}

// commissionDue is the single decision on referral commission: credits
// purchases pay it in commission modes, on every purchase when
// AlwaysGiveCommission is set and on the first one otherwise.
func (s Settings) commissionDue(t products.ItemType, firstPurchase bool) bool {
	if s.ReferralMode != ReferralCommission && s.ReferralMode != ReferralBoth {
		return false
	}

	if t != products.TypeCredits {
		return false
	}

	return s.AlwaysGiveCommission || firstPurchase
}

type SettingsProvider interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticSettings always returns the same values.
type StaticSettings Settings

func (s StaticSettings) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// StoreSettings overlays settings table rows on top of Base.
type StoreSettings struct {
	Base  Settings
	Store settings.Settings
}

func (s StoreSettings) Settings(ctx context.Context) (Settings, error) {
	rows, err := s.Store.All(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	out := s.Base

	for key, raw := range rows {
		err = out.apply(key, strings.TrimSpace(raw))
		if err != nil {
			return Settings{}, fmt.Errorf("setting %q: %w", key, err)
		}
	}

	return out, nil
}

func (s *Settings) apply(key, raw string) error {
	switch key {
	case KeyServerLimitAfterPurchase:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		s.ServerLimitAfterPurchase = v
	case KeyReferralMode:
		s.ReferralMode = ReferralMode(raw)
	case KeyAlwaysGiveCommission:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		s.AlwaysGiveCommission = v
	case KeyReferralPercentage:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		s.ReferralPercentage = v
	case KeyCreditsDisplayName:
		s.CreditsDisplayName = raw
	case KeySalesTax:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		s.SalesTaxPercent = v
	}

	return nil
}
