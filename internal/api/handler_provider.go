package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/fastprodman/paygate/internal/paypal"
	"github.com/fastprodman/paygate/internal/services/checkout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	cancelPath     = "/payment/cancel"
	successMessage = "Payment successful"
)

// Checkout is the service behind the payment routes.
type Checkout interface {
	InitiateOrder(ctx context.Context, userID uint64, productID uuid.UUID) (checkout.InitiateResult, error)
	ConfirmOrder(ctx context.Context, userID uint64, paymentID uuid.UUID, token string) (checkout.ConfirmResult, error)
}

// HandlerProvider wraps the checkout service and exposes HTTP handlers.
type HandlerProvider struct {
	svc      Checkout
	gateway  paypal.GatewayMetadata
	homePath string
	log      *slog.Logger
}

// NewHandler returns a new Handler provider. gateway is served masked.
func NewHandler(svc Checkout, gateway paypal.GatewayMetadata, homePath string, log *slog.Logger) *HandlerProvider {
	return &HandlerProvider{
		svc:      svc,
		gateway:  gateway.Masked(),
		homePath: homePath,
		log:      log,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}

	return id, true
}

func (h *HandlerProvider) successURL() string {
	return h.homePath + "?" + url.Values{"success": {successMessage}}.Encode()
}

// --- Handlers ---

// PayHandler handles GET|POST /payment/paypal/pay/{shopProductId}
func (h *HandlerProvider) PayHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	productID, ok := parseUUID(chi.URLParam(r, "shopProductId"))
	if !ok {
		writeError(w, http.StatusNotFound, "shop product not found")
		return
	}

	res, err := h.svc.InitiateOrder(r.Context(), userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotFound):
			writeError(w, http.StatusNotFound, "shop product not found")
		case errors.Is(err, checkout.ErrProviderRequestFailed):
			http.Redirect(w, r, cancelPath, http.StatusSeeOther)
		default:
			h.log.ErrorContext(r.Context(), "initiate order failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	http.Redirect(w, r, res.ApprovalURL, http.StatusSeeOther)
}

// SuccessHandler handles GET|POST /payment/paypal/success?payment=<id>&token=<token>
func (h *HandlerProvider) SuccessHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	q := r.URL.Query()

	paymentID, ok := parseUUID(q.Get("payment"))
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	// An empty token still goes to ConfirmOrder so the payment gets closed.
	_, err := h.svc.ConfirmOrder(r.Context(), userID, paymentID, q.Get("token"))
	if err != nil {
		h.writeConfirmError(w, r, err)
		return
	}

	http.Redirect(w, r, h.successURL(), http.StatusSeeOther)
}

func (h *HandlerProvider) writeConfirmError(w http.ResponseWriter, r *http.Request, err error) {
	var dump *checkout.DebugDumpError

	switch {
	case errors.As(err, &dump):
		writeJSON(w, http.StatusInternalServerError, debugDump(dump))
	case errors.Is(err, checkout.ErrNotFound):
		writeError(w, http.StatusNotFound, "payment not found")
	case errors.Is(err, checkout.ErrPaymentClosed):
		writeError(w, http.StatusConflict, "payment already closed")
	case errors.Is(err, checkout.ErrCaptureRejected):
		writeError(w, http.StatusInternalServerError, "payment rejected by provider")
	case errors.Is(err, checkout.ErrCaptureException):
		writeError(w, http.StatusUnprocessableEntity, "payment could not be captured")
	default:
		h.log.ErrorContext(r.Context(), "confirm order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type debugDumpResponse struct {
	Error      string          `json:"error"`
	StatusCode int             `json:"status_code,omitempty"`
	DebugID    string          `json:"debug_id,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	RawBody    string          `json:"raw_body,omitempty"`
}

func debugDump(d *checkout.DebugDumpError) debugDumpResponse {
	out := debugDumpResponse{
		Error:      d.Error(),
		StatusCode: d.StatusCode,
		DebugID:    d.DebugID,
	}

	if json.Valid(d.Body) {
		out.Body = d.Body
	} else {
		out.RawBody = string(d.Body)
	}

	return out
}

// CancelHandler handles GET /payment/cancel
func (h *HandlerProvider) CancelHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "canceled",
		"message": "Payment canceled",
	})
}

// GatewayHandler handles GET /payment/gateways/paypal
func (h *HandlerProvider) GatewayHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.gateway)
}
