// Package enrich merges client-supplied context with server-derived context.
//
// Merge policy, field by field: a value the client supplied wins; otherwise
// the server-derived value is used; country falls back to the default when
// neither side knows it. The geolocation resolver is only consulted when a
// location field is still missing and the client IP is known.
package enrich

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/onegateway/site-notify/internal/device"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/geo"
)

// ServerContext is what the service itself observed about the request.
type ServerContext struct {
	// ClientIP is the address derived from proxy headers, or domain.UnknownIP.
	ClientIP string
	// UserAgent is the request's User-Agent header.
	UserAgent string
}

// Enricher builds EnrichedRecords. It holds no per-request state.
type Enricher struct {
	resolver       geo.Resolver
	classify       func(string) domain.DeviceType
	defaultCountry string
	now            func() time.Time
	newID          func() string
}

// Option customises an Enricher.
type Option func(*Enricher)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(e *Enricher) { e.now = now } }

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(f func() string) Option { return func(e *Enricher) { e.newID = f } }

// WithClassifier overrides device classification.
func WithClassifier(f func(string) domain.DeviceType) Option {
	return func(e *Enricher) { e.classify = f }
}

// WithDefaultCountry overrides the fallback country code.
func WithDefaultCountry(c string) Option {
	return func(e *Enricher) {
		if c != "" {
			e.defaultCountry = c
		}
	}
}

// New creates an Enricher backed by resolver.
func New(resolver geo.Resolver, opts ...Option) *Enricher {
	e := &Enricher{
		resolver:       resolver,
		classify:       device.Classify,
		defaultCountry: domain.DefaultCountry,
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich produces the record for one submission. It never fails: a failed
// lookup inside the resolver already degraded to an unknown location.
func (e *Enricher) Enrich(ctx context.Context, sub domain.ContactSubmission, supplied domain.ClientContext, server ServerContext) domain.EnrichedRecord {
	merged := e.Merge(ctx, supplied, server)
	return domain.EnrichedRecord{
		ID:                e.newID(),
		ContactSubmission: sub,
		ClientContext:     merged,
		CreatedAt:         e.now().UTC(),
	}
}

// Merge fills the gaps in supplied. A fully-populated supplied context is
// returned unchanged and the resolver is not called.
func (e *Enricher) Merge(ctx context.Context, supplied domain.ClientContext, server ServerContext) domain.ClientContext {
	out := supplied

	if out.UserAgent == nil {
		out.UserAgent = domain.StringPtr(server.UserAgent)
	}
	if out.IPAddress == nil && server.ClientIP != domain.UnknownIP {
		out.IPAddress = domain.StringPtr(server.ClientIP)
	}
	if !out.DeviceType.Valid() {
		out.DeviceType = e.classify(domain.Deref(out.UserAgent))
	}

	needsLookup := out.Region == nil || out.City == nil || out.Country == ""
	if needsLookup && out.IPAddress != nil {
		loc := e.resolver.Resolve(ctx, *out.IPAddress)
		if out.Region == nil {
			out.Region = loc.Region
		}
		if out.City == nil {
			out.City = loc.City
		}
		if out.Country == "" {
			out.Country = loc.Country
		}
	}
	if out.Country == "" {
		out.Country = e.defaultCountry
	}
	return out
}
