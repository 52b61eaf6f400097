// Package geo resolves client IP addresses to an approximate location.
//
// Lookups are best-effort: any failure degrades to an unknown location with
// the default country and is logged, never returned to the caller.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/pkg/httpclient"
	"github.com/onegateway/site-notify/internal/pkg/logger"
)

// Resolver maps an IP address to a location. Implementations never fail.
type Resolver interface {
	Resolve(ctx context.Context, ip string) domain.Location
}

const lookupFields = "status,country,countryCode,region,regionName,city,query"

// lookupResponse is the ip-api.com JSON payload for the fields we request.
type lookupResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	Query       string `json:"query"`
}

// IPAPIResolver queries an ip-api.com compatible endpoint once per lookup.
type IPAPIResolver struct {
	baseURL        string
	userAgent      string
	defaultCountry string
	timeout        time.Duration
	client         httpclient.HTTPDoer
	log            *logger.Logger
}

// NewIPAPIResolver creates a resolver. If client is nil a client bounded by
// the configured timeout is used.
func NewIPAPIResolver(cfg config.GeolocationConfig, client httpclient.HTTPDoer) *IPAPIResolver {
	if client == nil {
		client = httpclient.New(cfg.Timeout())
	}
	country := cfg.DefaultCountry
	if country == "" {
		country = domain.DefaultCountry
	}
	return &IPAPIResolver{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		defaultCountry: country,
		timeout:        cfg.Timeout(),
		client:         client,
		log:            logger.Default().With("component", "geo"),
	}
}

// Resolve looks up ip. On any failure it returns region/city nil and the
// default country.
func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) domain.Location {
	if ip == "" || ip == domain.UnknownIP {
		return r.unknown()
	}
	loc, _, err := r.lookup(ctx, ip)
	if err != nil {
		r.log.Warn("geolocation lookup failed", "ip", ip, "error", err)
		return r.unknown()
	}
	return loc
}

// ResolveSelf looks up the caller's own public address (the provider answers
// for the requesting IP when none is given). It returns the detected IP, or
// "" when the lookup failed.
func (r *IPAPIResolver) ResolveSelf(ctx context.Context) (string, domain.Location) {
	loc, ip, err := r.lookup(ctx, "")
	if err != nil {
		r.log.Warn("self geolocation lookup failed", "error", err)
		return "", r.unknown()
	}
	return ip, loc
}

func (r *IPAPIResolver) unknown() domain.Location {
	return domain.Location{Country: r.defaultCountry}
}

func (r *IPAPIResolver) lookup(ctx context.Context, ip string) (domain.Location, string, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=%s", r.baseURL, url.PathEscape(ip), lookupFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Location{}, "", fmt.Errorf("build request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := httpclient.Send(r.client, req, r.timeout)
	if err != nil {
		return domain.Location{}, "", err
	}
	if !resp.OK() {
		return domain.Location{}, "", fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return domain.Location{}, "", fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "success" {
		return domain.Location{}, "", fmt.Errorf("provider returned status %q: %s", payload.Status, payload.Message)
	}

	region := payload.RegionName
	if region == "" {
		region = payload.Region
	}
	country := payload.CountryCode
	if country == "" {
		country = r.defaultCountry
	}
	return domain.Location{
		Region:  domain.StringPtr(region),
		City:    domain.StringPtr(payload.City),
		Country: country,
	}, payload.Query, nil
}

// Static is a Resolver that always returns the same location. Useful when
// geolocation is disabled and in tests.
type Static domain.Location

// Resolve returns the fixed location.
func (s Static) Resolve(context.Context, string) domain.Location { return domain.Location(s) }
