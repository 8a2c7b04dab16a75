package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/google/uuid"
)

var _ products.Products = (*productsRepo)(nil)

type productsRepo struct{ db *sql.DB }

func New(db *sql.DB) *productsRepo {
	return &productsRepo{db: db}
}

func (r *productsRepo) Get(ctx context.Context, id uuid.UUID) (products.Product, error) {
	var p products.Product

	err := r.db.QueryRowContext(ctx, `
		SELECT id, type, display, description, quantity, price, currency_code, disabled
		FROM shop_products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Type, &p.Display, &p.Description, &p.Quantity, &p.Price, &p.CurrencyCode, &p.Disabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrProductNotFound
		}

		return products.Product{}, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}
