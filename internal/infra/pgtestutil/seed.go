package pgtestutil

import (
	"database/sql"
	"testing"
)

// SeedUser inserts a users row or fails the test.
func SeedUser(t *testing.T, db *sql.DB, id uint64, name, role string, credits, serverLimit int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO users (id, name, role, credits, server_limit)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, role, credits, serverLimit)
	if err != nil {
		t.Fatalf("seed user(%d): %v", id, err)
	}
}

// SeedProduct inserts a shop_products row or fails the test.
func SeedProduct(t *testing.T, db *sql.DB, id, typ, display string, quantity, price int64, currency string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO shop_products (id, type, display, quantity, price, currency_code)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, typ, display, quantity, price, currency)
	if err != nil {
		t.Fatalf("seed product(%s): %v", id, err)
	}
}

// SeedReferral links registered to referrer or fails the test.
func SeedReferral(t *testing.T, db *sql.DB, referrerID, registeredID uint64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO user_referrals (referral_id, registered_user_id)
		VALUES ($1, $2)
	`, referrerID, registeredID)
	if err != nil {
		t.Fatalf("seed referral(%d->%d): %v", referrerID, registeredID, err)
	}
}

// SeedPartner inserts a partner_discounts row or fails the test.
func SeedPartner(t *testing.T, db *sql.DB, userID uint64, partnerDiscount, registeredDiscount, commission int) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO partner_discounts (user_id, partner_discount, registered_user_discount, referral_system_commission)
		VALUES ($1, $2, $3, $4)
	`, userID, partnerDiscount, registeredDiscount, commission)
	if err != nil {
		t.Fatalf("seed partner(%d): %v", userID, err)
	}
}
