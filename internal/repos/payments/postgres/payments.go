package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/payments"
	"github.com/google/uuid"
)

var _ payments.Payments = (*paymentsRepo)(nil)

type paymentsRepo struct{ db *sql.DB }

func New(db *sql.DB) *paymentsRepo {
	return &paymentsRepo{db: db}
}

const paymentColumns = `id, user_id, payment_id, payment_method, type, status, amount, price,
	tax_value, tax_percent, total_price, currency_code, shop_item_product_id, created_at, updated_at`

func scanPayment(row *sql.Row) (payments.Payment, error) {
	var (
		p          payments.Payment
		externalID sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.UserID, &externalID, &p.Method, &p.Type, &p.Status, &p.Amount, &p.Price,
		&p.TaxValue, &p.TaxPercent, &p.TotalPrice, &p.CurrencyCode, &p.ProductID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payments.Payment{}, payments.ErrPaymentNotFound
		}

		return payments.Payment{}, err
	}

	p.ExternalID = externalID.String

	return p, nil
}

func (r *paymentsRepo) Insert(ctx context.Context, p payments.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, user_id, payment_id, payment_method, type, status, amount, price,
			tax_value, tax_percent, total_price, currency_code, shop_item_product_id
		)
		VALUES ($1, $2, NULL, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.UserID, p.Method, string(p.Type), string(p.Status), p.Amount, p.Price,
		p.TaxValue, p.TaxPercent, p.TotalPrice, p.CurrencyCode, p.ProductID)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return payments.ErrDuplicatePayment
		}

		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *paymentsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	return nil
}

func (r *paymentsRepo) Get(ctx context.Context, id uuid.UUID) (payments.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
	`, id))
	if err != nil {
		return payments.Payment{}, fmt.Errorf("get payment: %w", err)
	}

	return p, nil
}

func (r *paymentsRepo) LockAndGet(tx *sql.Tx, id uuid.UUID) (payments.Payment, error) {
	p, err := scanPayment(tx.QueryRow(`
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return payments.Payment{}, fmt.Errorf("lock/get payment: %w", err)
	}

	return p, nil
}

func (r *paymentsRepo) Settle(tx *sql.Tx, id uuid.UUID, status payments.Status, externalID string) error {
	res, err := tx.Exec(`
		UPDATE payments
		SET status = $2,
		    payment_id = NULLIF($3, ''),
		    updated_at = now()
		WHERE id = $1
		  AND status = 'open'
	`, id, string(status), externalID)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return payments.ErrPaymentNotOpen
	}

	return nil
}
