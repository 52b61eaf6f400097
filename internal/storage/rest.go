package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/pkg/httpclient"
)

// RESTStore inserts rows through a PostgREST-style endpoint
// (POST {url}/rest/v1/{table}).
type RESTStore struct {
	endpoint string
	apiKey   string
	client   httpclient.HTTPDoer
	cfg      config.StorageConfig
}

// NewRESTStore builds a store for cfg. A nil client gets a default one.
func NewRESTStore(cfg config.StorageConfig, client httpclient.HTTPDoer) (*RESTStore, error) {
	if cfg.RESTURL == "" || cfg.RESTAPIKey == "" {
		return nil, errors.New("rest storage requires rest_url and rest_api_key")
	}
	if err := validIdentifier(cfg.RESTTable); err != nil {
		return nil, err
	}
	if client == nil {
		client = httpclient.New(cfg.Timeout())
	}
	return &RESTStore{
		endpoint: strings.TrimRight(cfg.RESTURL, "/") + "/rest/v1/" + cfg.RESTTable,
		apiKey:   cfg.RESTAPIKey,
		client:   client,
		cfg:      cfg,
	}, nil
}

// Insert posts rec as a single row.
func (s *RESTStore) Insert(ctx context.Context, rec domain.EnrichedRecord) error {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, s.endpoint, toRow(rec))
	if err != nil {
		return persistErr("rest", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := httpclient.Send(s.client, req, s.cfg.Timeout())
	if err != nil {
		return persistErr("rest", err)
	}
	switch {
	case resp.StatusCode == http.StatusConflict:
		return persistErr("rest", fmt.Errorf("%w: %s", ErrDuplicate, rec.ID))
	case !resp.OK():
		return persistErr("rest", fmt.Errorf("status %d: %s", resp.StatusCode, string(resp.Body)))
	}
	return nil
}

func (s *RESTStore) Close() error { return nil }
