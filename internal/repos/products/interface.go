package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("shop product not found")

type ItemType string

const (
	TypeCredits     ItemType = "Credits"
	TypeServerSlots ItemType = "Server slots"
)

// Product is a purchasable catalog item. Price is in minor units of
// CurrencyCode and covers the whole Quantity.
type Product struct {
	ID           uuid.UUID
	Type         ItemType
	Display      string
	Description  string
	Quantity     int64
	Price        int64
	CurrencyCode string
	Disabled     bool
}

type Products interface {
	Get(ctx context.Context, id uuid.UUID) (Product, error)
}
