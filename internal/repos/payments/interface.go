package payments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentNotOpen   = errors.New("payment is not open")
	ErrDuplicatePayment = errors.New("duplicate payment")
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const MethodPayPal = "paypal"

// Payment is one purchase attempt. ExternalID is the provider order id; it
// stays empty until the payment leaves the open status.
type Payment struct {
	ID           uuid.UUID
	UserID       uint64
	ExternalID   string
	Method       string
	Type         products.ItemType
	Status       Status
	Amount       int64
	Price        int64
	TaxValue     int64
	TaxPercent   float64
	TotalPrice   int64
	CurrencyCode string
	ProductID    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Payments interface {
	Insert(ctx context.Context, p Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Payment, error)
	LockAndGet(tx *sql.Tx, id uuid.UUID) (Payment, error)
	// Settle moves an open payment to status and records externalID (empty
	// stores NULL). ErrPaymentNotOpen when the row already left open.
	Settle(tx *sql.Tx, id uuid.UUID, status Status, externalID string) error
}
