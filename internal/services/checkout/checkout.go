// Package checkout runs the two halves of a PayPal purchase: opening an order
// the buyer approves at the provider, and capturing it afterwards to credit
// the buyer's account.
package checkout

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fastprodman/paygate/internal/events"
	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/repos/activity"
	pgactivity "github.com/fastprodman/paygate/internal/repos/activity/postgres"
	pgpartners "github.com/fastprodman/paygate/internal/repos/partners/postgres"
	"github.com/fastprodman/paygate/internal/repos/payments"
	pgpayments "github.com/fastprodman/paygate/internal/repos/payments/postgres"
	"github.com/fastprodman/paygate/internal/repos/products"
	pgproducts "github.com/fastprodman/paygate/internal/repos/products/postgres"
	"github.com/fastprodman/paygate/internal/repos/referrals"
	pgreferrals "github.com/fastprodman/paygate/internal/repos/referrals/postgres"
	"github.com/fastprodman/paygate/internal/repos/users"
	pgusers "github.com/fastprodman/paygate/internal/repos/users/postgres"
	"github.com/fastprodman/paygate/internal/services/partner"
	"github.com/google/uuid"
)

type Service struct {
	withTx    pgutils.TxRunner
	db        pgutils.Queryer
	users     users.Users
	products  products.Products
	payments  payments.Payments
	referrals referrals.Referrals
	activity  activity.Activity
	policy    DiscountPolicy
	provider  Provider
	settings  SettingsProvider
	env       Environment
	events    events.Publisher
	log       *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

type Option func(*Service)

func WithEnvironment(env Environment) Option {
	return func(s *Service) { s.env = env }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New wires the service to the postgres repositories behind dbx.
func New(dbx *sql.DB, provider Provider, settings SettingsProvider, opts ...Option) *Service {
	refs := pgreferrals.New()

	s := &Service{
		withTx:    pgutils.Runner(dbx),
		db:        dbx,
		users:     pgusers.New(dbx),
		products:  pgproducts.New(dbx),
		payments:  pgpayments.New(dbx),
		referrals: refs,
		activity:  pgactivity.New(),
		policy:    partner.NewPolicy(pgpartners.New(), refs),
		provider:  provider,
		settings:  settings,
	}

	return s.apply(opts)
}

func (s *Service) apply(opts []Option) *Service {
	for _, opt := range opts {
		opt(s)
	}

	if s.env == nil {
		s.env = Production{}
	}

	if s.events == nil {
		s.events = events.Multi{}
	}

	if s.log == nil {
		s.log = slog.Default()
	}

	if s.now == nil {
		s.now = time.Now
	}

	if s.newID == nil {
		s.newID = uuid.New
	}

	return s
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now().UTC()

	err := s.events.Publish(ctx, e)
	if err != nil {
		s.log.WarnContext(ctx, "publish event failed",
			"event", string(e.Name), "user_id", e.UserID, "error", err)
	}
}
