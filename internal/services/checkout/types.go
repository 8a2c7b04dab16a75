package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/paypal"
	"github.com/google/uuid"
)

var (
	// ErrNotFound covers a missing product, a missing payment and a payment
	// owned by another account.
	ErrNotFound              = errors.New("not found")
	ErrProviderRequestFailed = errors.New("payment provider request failed")
	ErrCaptureRejected       = errors.New("payment capture rejected")
	ErrCaptureException      = errors.New("payment capture failed")
	// ErrPaymentClosed is returned when confirming a payment that already failed.
	ErrPaymentClosed = errors.New("payment already closed")
)

// DebugDumpError replaces the failure bookkeeping in a debug environment:
// the payment is deleted and the raw provider answer handed back.
type DebugDumpError struct {
	StatusCode int
	DebugID    string
	Body       []byte
	Cause      error
}

func (e *DebugDumpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capture debug dump (status %d): %v", e.StatusCode, e.Cause)
	}

	return fmt.Sprintf("capture debug dump (status %d)", e.StatusCode)
}

func (e *DebugDumpError) Unwrap() error {
	return e.Cause
}

// Provider is the part of the PayPal client the checkout flow drives.
type Provider interface {
	CreateOrder(ctx context.Context, order paypal.OrderRequest, requestID string) (*paypal.Response, error)
	CaptureOrder(ctx context.Context, orderID, requestID string) (*paypal.Response, error)
}

// DiscountPolicy resolves buyer discounts and referrer commissions.
type DiscountPolicy interface {
	Discount(ctx context.Context, q pgutils.Queryer, userID uint64) (int, error)
	Commission(ctx context.Context, q pgutils.Queryer, referrerID uint64, defaultPercent int) (int, error)
}

type InitiateResult struct {
	PaymentID   uuid.UUID
	ApprovalURL string
}

type ConfirmResult struct {
	PaymentID uuid.UUID
	// Replayed is set when the payment had already been settled successfully
	// and nothing was applied by this call.
	Replayed bool
}
