// Package collector is the client side of the contact pipeline: it gathers
// the form, the caller's device and (with consent) approximate location,
// then makes one call to the notification service.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/device"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/geo"
	"github.com/onegateway/site-notify/internal/pkg/httpclient"
	"github.com/onegateway/site-notify/internal/pkg/logger"
	"github.com/onegateway/site-notify/internal/tracking"
)

// ErrRejected is returned when the service answers with a non-2xx status.
var ErrRejected = errors.New("submission rejected")

// Form is what the user typed.
type Form = domain.ContactSubmission

// SelfLocator resolves the caller's own public IP and location.
type SelfLocator interface {
	ResolveSelf(ctx context.Context) (string, domain.Location)
}

// Response is the service's answer, success or failure.
type Response struct {
	StatusCode   int                   `json:"-"`
	Success      bool                   `json:"success"`
	Message      string                 `json:"message,omitempty"`
	MessageID    int64                  `json:"message_id,omitempty"`
	EnhancedData *domain.EnrichedRecord `json:"enhanced_data,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Details      string                 `json:"details,omitempty"`
}

type Collector struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	client    httpclient.HTTPDoer
	locator   SelfLocator
	consent   tracking.Consent
}

type Option func(*Collector)

func WithHTTPClient(c httpclient.HTTPDoer) Option { return func(col *Collector) { col.client = c } }

func WithLocator(l SelfLocator) Option { return func(col *Collector) { col.locator = l } }

func WithConsent(c tracking.Consent) Option { return func(col *Collector) { col.consent = c } }

// WithUserAgent sets the user agent reported and classified.
func WithUserAgent(ua string) Option { return func(col *Collector) { col.userAgent = ua } }

// New builds a collector posting to cfg.Endpoint. Consent is read from
// cfg.ConsentFile and location comes from an ip-api resolver on cfg.GeoURL
// unless overridden.
func New(cfg config.CollectorConfig, opts ...Option) (*Collector, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("collector endpoint is required")
	}
	c := &Collector{
		endpoint:  cfg.Endpoint,
		userAgent: defaultUserAgent,
		timeout:   cfg.Timeout(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = httpclient.New(c.timeout)
	}
	if c.consent == nil {
		consent, err := tracking.LoadConsent(cfg.ConsentFile)
		if err != nil {
			logger.Warn("consent preference unreadable", "path", cfg.ConsentFile, "granted", bool(consent), "error", err)
		}
		c.consent = consent
	}
	if c.locator == nil && cfg.GeoURL != "" {
		c.locator = geo.NewIPAPIResolver(config.GeolocationConfig{
			BaseURL:        cfg.GeoURL,
			UserAgent:      c.userAgent,
			TimeoutSeconds: geoTimeoutSeconds,
			DefaultCountry: domain.DefaultCountry,
		}, nil)
	}
	return c, nil
}

const (
	defaultUserAgent  = "contact-submit/1.0 (Linux)"
	geoTimeoutSeconds = 3
)

// TrackingData is the client context the collector attaches to a form.
func (c *Collector) TrackingData(ctx context.Context) domain.SubmissionRequest {
	req := domain.SubmissionRequest{
		DeviceType: string(device.Classify(c.userAgent)),
		UserAgent:  c.userAgent,
	}
	if c.locator == nil || !c.consent.Granted() {
		return req
	}
	// An empty IP means the lookup failed; leave location to the server.
	ip, loc := c.locator.ResolveSelf(ctx)
	if ip == "" || ip == domain.UnknownIP {
		return req
	}
	req.IPAddress = ip
	req.Region = domain.Deref(loc.Region)
	req.City = domain.Deref(loc.City)
	req.Country = loc.Country
	return req
}

// Submit sends form with tracking data in a single POST. A non-2xx answer
// returns the decoded Response together with an error wrapping ErrRejected.
func (c *Collector) Submit(ctx context.Context, form Form) (*Response, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	payload := c.TrackingData(ctx)
	payload.ContactSubmission = form

	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httpclient.Send(c.client, req, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("submitting contact form: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return out, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if !resp.OK() {
		return out, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, out.Details)
	}
	return out, nil
}
