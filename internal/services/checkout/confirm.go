package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/fastprodman/paygate/internal/events"
	"github.com/fastprodman/paygate/internal/infra/metrics"
	"github.com/fastprodman/paygate/internal/paypal"
	"github.com/fastprodman/paygate/internal/repos/activity"
	"github.com/fastprodman/paygate/internal/repos/payments"
	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/fastprodman/paygate/internal/repos/users"
	"github.com/google/uuid"
)

const (
	reasonPurchase   = "purchase"
	reasonCommission = "commission"
)

// ConfirmOrder captures the provider order behind token and settles the
// payment. A payment that already succeeded is reported as a replay without
// touching the provider again; one that failed returns ErrPaymentClosed.
func (s *Service) ConfirmOrder(ctx context.Context, userID uint64, paymentID uuid.UUID, token string) (ConfirmResult, error) {
	st, err := s.settings.Settings(ctx)
	if err != nil {
		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, fmt.Errorf("resolve settings: %w", err)
	}

	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			return ConfirmResult{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}

		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, fmt.Errorf("get payment: %w", err)
	}

	if payment.UserID != userID {
		return ConfirmResult{}, fmt.Errorf("%w: payment %s belongs to another account", ErrNotFound, paymentID)
	}

	_, err = s.products.Get(ctx, payment.ProductID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			return ConfirmResult{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}

		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, fmt.Errorf("get product: %w", err)
	}

	switch payment.Status {
	case payments.StatusSuccess:
		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeReplayed).Inc()
		return ConfirmResult{PaymentID: paymentID, Replayed: true}, nil
	case payments.StatusFailed:
		return ConfirmResult{}, fmt.Errorf("payment %s: %w", paymentID, ErrPaymentClosed)
	}

	resp, err := s.provider.CaptureOrder(ctx, token, "capture-"+paymentID.String())
	if err != nil {
		return s.failCapture(ctx, payment, nil, err)
	}

	if !resp.OK() {
		return s.failCapture(ctx, payment, resp, fmt.Errorf("capture: unexpected status %d (debug id %q)", resp.StatusCode, resp.DebugID))
	}

	applied, err := s.applyCapture(ctx, paymentID, resp.Result.ID, st)
	if errors.Is(err, ErrPaymentClosed) {
		// A concurrent confirmation failed the payment while this capture went
		// through; the captured order needs manual reconciliation.
		s.log.ErrorContext(ctx, "captured order on a failed payment",
			"payment_id", paymentID, "user_id", userID, "order_id", resp.Result.ID)

		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, fmt.Errorf("settle payment: %w", err)
	}

	if err != nil {
		s.log.ErrorContext(ctx, "settle captured payment failed",
			"payment_id", paymentID, "order_id", resp.Result.ID, "error", err)

		// The money moved at the provider; keep the order id for reconciliation.
		markErr := s.withTx(context.WithoutCancel(ctx), func(tx *sql.Tx) error {
			return s.payments.Settle(tx, paymentID, payments.StatusFailed, resp.Result.ID)
		})
		if markErr != nil {
			s.log.ErrorContext(ctx, "mark unsettled payment failed",
				"payment_id", paymentID, "error", markErr)
		}

		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, fmt.Errorf("settle payment: %w", err)
	}

	if !applied {
		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeReplayed).Inc()
		return ConfirmResult{PaymentID: paymentID, Replayed: true}, nil
	}

	s.publish(ctx, events.Event{Name: events.UserCreditsUpdated, UserID: userID})
	s.publish(ctx, events.Event{Name: events.PaymentCompleted, UserID: userID, PaymentID: paymentID})

	metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return ConfirmResult{PaymentID: paymentID}, nil
}

// applyCapture runs the whole success path in a single DB transaction:
//
// 1) Lock the payment row; stop when it is no longer open.
// 2) Lock the buyer row.
// 3) Apply the server-limit floor and the purchased quantity.
// 4) Promote a first-time buyer and pay the referral commission.
// 5) Mark the payment successful.
//
// It reports false when another confirmation settled the payment successfully
// first, and ErrPaymentClosed when one failed it.
func (s *Service) applyCapture(ctx context.Context, paymentID uuid.UUID, orderID string, st Settings) (bool, error) {
	applied := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// 1) Lock the payment
		payment, err := s.payments.LockAndGet(tx, paymentID)
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}

		switch payment.Status {
		case payments.StatusSuccess:
			return nil
		case payments.StatusFailed:
			return fmt.Errorf("payment %s: %w", payment.ID, ErrPaymentClosed)
		}

		// 2) Lock the buyer
		buyer, err := s.users.LockAndGet(tx, payment.UserID)
		if err != nil {
			return fmt.Errorf("lock buyer: %w", err)
		}

		// 3) Apply the purchase
		if st.ServerLimitAfterPurchase > 0 {
			_, err = s.users.RaiseServerLimit(tx, buyer.ID, st.ServerLimitAfterPurchase)
			if err != nil {
				return fmt.Errorf("raise server limit: %w", err)
			}
		}

		switch payment.Type {
		case products.TypeCredits:
			err = s.users.IncreaseCredits(tx, buyer.ID, payment.Amount)
			if err != nil {
				return fmt.Errorf("increase credits: %w", err)
			}

			metrics.CreditsGranted.WithLabelValues(reasonPurchase).Add(float64(payment.Amount))

		case products.TypeServerSlots:
			err = s.users.IncreaseServerLimit(tx, buyer.ID, payment.Amount)
			if err != nil {
				return fmt.Errorf("increase server limit: %w", err)
			}

		default:
			s.log.WarnContext(ctx, "payment item type has no balance effect",
				"payment_id", payment.ID, "type", string(payment.Type))
		}

		// 4) Promotion and commission
		promoted := false
		if buyer.Role == users.RoleMember {
			promoted, err = s.users.PromoteRole(tx, buyer.ID, users.RoleMember, users.RoleClient)
			if err != nil {
				return fmt.Errorf("promote buyer: %w", err)
			}
		}

		if st.commissionDue(payment.Type, promoted) {
			err = s.payCommission(ctx, tx, buyer, payment.Amount, st)
			if err != nil {
				return fmt.Errorf("pay commission: %w", err)
			}
		}

		// 5) Settle
		err = s.payments.Settle(tx, payment.ID, payments.StatusSuccess, orderID)
		if err != nil {
			return fmt.Errorf("settle payment: %w", err)
		}

		applied = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

func (s *Service) payCommission(ctx context.Context, tx *sql.Tx, buyer users.Account, quantity int64, st Settings) error {
	referrerID, ok, err := s.referrals.ReferrerOf(ctx, tx, buyer.ID)
	if err != nil {
		return fmt.Errorf("find referrer: %w", err)
	}

	if !ok {
		return nil
	}

	percent, err := s.policy.Commission(ctx, tx, referrerID, st.ReferralPercentage)
	if err != nil {
		return fmt.Errorf("resolve commission: %w", err)
	}

	amount := commissionAmount(quantity, percent)
	if amount <= 0 {
		return nil
	}

	err = s.users.Exists(tx, referrerID)
	if errors.Is(err, users.ErrUserNotFound) {
		s.log.WarnContext(ctx, "referrer account is gone, commission skipped",
			"referrer_id", referrerID, "buyer_id", buyer.ID)
		return nil
	}

	if err != nil {
		return fmt.Errorf("check referrer: %w", err)
	}

	err = s.users.IncreaseCredits(tx, referrerID, amount)
	if err != nil {
		return fmt.Errorf("credit referrer: %w", err)
	}

	err = s.activity.Insert(tx, activity.Entry{
		SubjectID: buyer.ID,
		CauserID:  referrerID,
		Description: fmt.Sprintf("gained %d %s for commission-referral of %s (ID:%d)",
			amount, st.CreditsDisplayName, buyer.Name, buyer.ID),
	})
	if err != nil {
		return fmt.Errorf("log commission: %w", err)
	}

	metrics.CreditsGranted.WithLabelValues(reasonCommission).Add(float64(amount))

	return nil
}

// commissionAmount rounds half away from zero.
func commissionAmount(quantity int64, percent int) int64 {
	return int64(math.Round(float64(quantity) * float64(percent) / 100))
}

// failCapture records a failed capture. resp is nil when the provider call
// itself failed; the order id is then never trusted.
func (s *Service) failCapture(ctx context.Context, payment payments.Payment, resp *paypal.Response, cause error) (ConfirmResult, error) {
	kind, outcome := ErrCaptureException, metrics.OutcomeException
	externalID := ""

	if resp != nil {
		kind, outcome = ErrCaptureRejected, metrics.OutcomeRejected
		externalID = resp.Result.ID
	}

	s.log.ErrorContext(ctx, "capture payment failed",
		"payment_id", payment.ID, "user_id", payment.UserID, "error", cause)

	ctx = context.WithoutCancel(ctx)

	if s.env.IsDebug() {
		err := s.payments.Delete(ctx, payment.ID)
		if err != nil {
			s.log.ErrorContext(ctx, "delete payment for debug dump failed", "payment_id", payment.ID, "error", err)
		}

		dump := &DebugDumpError{Cause: cause}
		if resp != nil {
			dump.StatusCode = resp.StatusCode
			dump.DebugID = resp.DebugID
			dump.Body = resp.Raw
		}

		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeDebugDump).Inc()
		return ConfirmResult{}, dump
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.payments.Settle(tx, payment.ID, payments.StatusFailed, externalID)
	})
	if errors.Is(err, payments.ErrPaymentNotOpen) {
		// A concurrent confirmation settled it first; its outcome stands.
		current, getErr := s.payments.Get(ctx, payment.ID)
		if getErr == nil && current.Status == payments.StatusSuccess {
			metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeReplayed).Inc()
			return ConfirmResult{PaymentID: payment.ID, Replayed: true}, nil
		}
	} else if err != nil {
		metrics.OrdersConfirmed.WithLabelValues(metrics.OutcomeError).Inc()
		return ConfirmResult{}, errors.Join(fmt.Errorf("%w: %w", kind, cause), fmt.Errorf("mark payment failed: %w", err))
	}

	metrics.OrdersConfirmed.WithLabelValues(outcome).Inc()

	return ConfirmResult{}, fmt.Errorf("%w: %w", kind, cause)
}
