package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/enrich"
	"github.com/onegateway/site-notify/internal/notify"
	"github.com/onegateway/site-notify/internal/pkg/logger"
	"github.com/onegateway/site-notify/internal/storage"
	"github.com/onegateway/site-notify/internal/tracking"
)

const defaultStoreTimeout = 5 * time.Second

// Result is the outcome of an accepted submission.
type Result struct {
	Receipt notify.Receipt
	Record  domain.EnrichedRecord
}

// Service runs the submission pipeline. It is safe for concurrent use.
type Service struct {
	enricher   *enrich.Enricher
	dispatcher notify.Dispatcher

	store        storage.Store
	storeTimeout time.Duration

	publisher tracking.Publisher
	consent   tracking.Consent
	currency  string

	log *logger.Logger
}

type Option func(*Service)

// WithStore enables persistence. A nil store disables it.
func WithStore(store storage.Store, timeout time.Duration) Option {
	return func(s *Service) {
		s.store = store
		if timeout > 0 {
			s.storeTimeout = timeout
		}
	}
}

// WithTracking mirrors accepted submissions to pub while consent is granted.
func WithTracking(pub tracking.Publisher, consent tracking.Consent, currency string) Option {
	return func(s *Service) {
		s.publisher = pub
		s.consent = consent
		s.currency = currency
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a contact service delivering through dispatcher.
func NewService(enricher *enrich.Enricher, dispatcher notify.Dispatcher, opts ...Option) *Service {
	s := &Service{
		enricher:     enricher,
		dispatcher:   dispatcher,
		storeTimeout: defaultStoreTimeout,
		publisher:    tracking.NopPublisher{},
		consent:      tracking.StaticConsent(false),
		log:          logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persists reports whether accepted records are stored.
func (s *Service) Persists() bool { return s.store != nil }

// Submit runs one submission through the pipeline.
func (s *Service) Submit(ctx context.Context, req domain.SubmissionRequest, meta enrich.ServerContext) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	rec := s.enricher.Enrich(ctx, req.ContactSubmission, req.Supplied(), meta)
	log := s.log.With("record_id", rec.ID)

	receipt, err := s.dispatcher.Notify(ctx, rec)
	if err != nil {
		log.Error("telegram delivery failed", "error", err.Error())
		return nil, err
	}
	log.Info("telegram notification sent",
		"message_id", receipt.MessageID,
		"email", rec.Email,
		"device_type", string(rec.DeviceType),
		"country", rec.Country,
	)

	if s.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		err := s.store.Insert(storeCtx, rec)
		cancel()
		if err != nil {
			log.Error("persisting submission failed", "error", err.Error())
			return nil, err
		}
	}

	if s.consent.Granted() {
		s.publisher.Publish(ctx, tracking.NewContactEvent(rec, s.currency))
	}

	return &Result{Receipt: receipt, Record: rec}, nil
}
