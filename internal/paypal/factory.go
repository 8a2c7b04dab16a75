package paypal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fastprodman/paygate/internal/config"
	"github.com/fastprodman/paygate/internal/infra/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 20 * time.Second

// Credentials returns the API base URL and the credential pair for the
// configured mode. Sandbox mode uses the sandbox pair; anything else is live.
func Credentials(cfg config.PayPalConfig) (baseURL, clientID, secret string) {
	if cfg.Sandbox() {
		baseURL, clientID, secret = SandboxBaseURL, cfg.SandboxClientID, cfg.SandboxSecret
	} else {
		baseURL, clientID, secret = LiveBaseURL, cfg.ClientID, cfg.Secret
	}

	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return baseURL, clientID, secret
}

// NewClient builds a client for the environment selected by cfg.Mode. Access
// tokens are fetched with the client-credentials grant and cached until they
// expire. Every request, token fetches included, is bounded by cfg.Timeout.
func NewClient(cfg config.PayPalConfig, log *slog.Logger) *Client {
	baseURL, clientID, secret := Credentials(cfg)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := &http.Client{Timeout: timeout}

	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = timeout

	name := "paypal-" + cfg.Mode

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("paypal circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
			metrics.ProviderBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: breaker,
		log:     log.With("component", "paypal", "mode", cfg.Mode),
	}
}
