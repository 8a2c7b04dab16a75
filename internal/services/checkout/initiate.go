package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fastprodman/paygate/internal/infra/metrics"
	"github.com/fastprodman/paygate/internal/paypal"
	"github.com/fastprodman/paygate/internal/repos/payments"
	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/fastprodman/paygate/internal/repos/users"
	"github.com/fastprodman/paygate/internal/services/pricing"
	"github.com/google/uuid"
)

var errNoApprovalLink = errors.New("order has no approval link")

// InitiateOrder prices productID for userID, records an open payment and
// opens a provider order for it:
//
// 1) Check the buyer and product, resolve the discount and quote the price.
// 2) Insert the open payment.
// 3) Create the provider order and return its approval link.
//
// When the provider call fails the payment row is deleted again.
func (s *Service) InitiateOrder(ctx context.Context, userID uint64, productID uuid.UUID) (InitiateResult, error) {
	st, err := s.settings.Settings(ctx)
	if err != nil {
		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeError).Inc()
		return InitiateResult{}, fmt.Errorf("resolve settings: %w", err)
	}

	_, err = s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return InitiateResult{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}

		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeError).Inc()
		return InitiateResult{}, fmt.Errorf("get buyer: %w", err)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			return InitiateResult{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}

		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeError).Inc()
		return InitiateResult{}, fmt.Errorf("get product: %w", err)
	}

	if product.Disabled {
		return InitiateResult{}, fmt.Errorf("%w: product %s is disabled", ErrNotFound, product.ID)
	}

	discount, err := s.policy.Discount(ctx, s.db, userID)
	if err != nil {
		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeError).Inc()
		return InitiateResult{}, fmt.Errorf("resolve discount: %w", err)
	}

	quote := pricing.NewQuote(product.Price, discount, st.SalesTaxPercent)

	payment := payments.Payment{
		ID:           s.newID(),
		UserID:       userID,
		Method:       payments.MethodPayPal,
		Type:         product.Type,
		Status:       payments.StatusOpen,
		Amount:       product.Quantity,
		Price:        quote.PriceAfterDiscount,
		TaxValue:     quote.TaxValue,
		TaxPercent:   quote.TaxPercent,
		TotalPrice:   quote.Total,
		CurrencyCode: product.CurrencyCode,
		ProductID:    product.ID,
	}

	err = s.payments.Insert(ctx, payment)
	if err != nil {
		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeError).Inc()
		return InitiateResult{}, fmt.Errorf("insert payment: %w", err)
	}

	referenceID := s.newID().String()

	approvalURL, err := s.createOrder(ctx, orderRequest(product, quote, payment.ID, referenceID, st), referenceID)
	if err != nil {
		s.log.ErrorContext(ctx, "create provider order failed",
			"payment_id", payment.ID, "user_id", userID, "product_id", product.ID, "error", err)

		// The buyer may already be gone; the cleanup must still run.
		delErr := s.payments.Delete(context.WithoutCancel(ctx), payment.ID)
		if delErr != nil {
			s.log.ErrorContext(ctx, "delete abandoned payment failed",
				"payment_id", payment.ID, "error", delErr)
		}

		metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeProviderFailed).Inc()
		return InitiateResult{}, fmt.Errorf("%w: %w", ErrProviderRequestFailed, err)
	}

	metrics.OrdersInitiated.WithLabelValues(metrics.OutcomeRedirected).Inc()

	return InitiateResult{PaymentID: payment.ID, ApprovalURL: approvalURL}, nil
}

func (s *Service) createOrder(ctx context.Context, req paypal.OrderRequest, requestID string) (string, error) {
	resp, err := s.provider.CreateOrder(ctx, req, requestID)
	if err != nil {
		return "", err
	}

	if !resp.OK() {
		return "", fmt.Errorf("create order: unexpected status %d (debug id %q)", resp.StatusCode, resp.DebugID)
	}

	link, ok := resp.Result.ApprovalURL()
	if !ok {
		return "", fmt.Errorf("order %s: %w", resp.Result.ID, errNoApprovalLink)
	}

	return link, nil
}

func orderRequest(product products.Product, quote pricing.Quote, paymentID uuid.UUID, referenceID string, st Settings) paypal.OrderRequest {
	currency := strings.ToUpper(product.CurrencyCode)

	description := product.Display
	if quote.DiscountPercent > 0 {
		description += fmt.Sprintf(" (Discount %d%%)", quote.DiscountPercent)
	}

	return paypal.OrderRequest{
		Intent: paypal.IntentCapture,
		PurchaseUnits: []paypal.PurchaseUnit{{
			ReferenceID: referenceID,
			Description: description,
			Amount: paypal.Amount{
				CurrencyCode: currency,
				Value:        pricing.FormatMinor(quote.Total),
				Breakdown: &paypal.Breakdown{
					ItemTotal: paypal.Money{CurrencyCode: currency, Value: pricing.FormatMinor(quote.PriceAfterDiscount)},
					TaxTotal:  paypal.Money{CurrencyCode: currency, Value: pricing.FormatMinor(quote.TaxValue)},
				},
			},
		}},
		ApplicationContext: paypal.ApplicationContext{
			CancelURL:          st.CancelURL(),
			ReturnURL:          st.ReturnURL(paymentID),
			BrandName:          st.AppName,
			ShippingPreference: paypal.ShippingNoShipping,
		},
	}
}
