package main

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/geo"
	"github.com/onegateway/site-notify/internal/notify"
	"github.com/onegateway/site-notify/internal/pkg/logger"
)

func newTestStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newStub(logger.New(io.Discard, logger.INFO, true)).routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestStub_TelegramDispatcher(t *testing.T) {
	srv := newTestStub(t)

	send := func(token string) (notify.Receipt, error) {
		d := notify.NewTelegramDispatcher(config.TelegramConfig{
			BotToken: token, ChatID: "-1", BaseURL: srv.URL, ParseMode: "Markdown", TimeoutSeconds: 5,
		}, nil, nil)
		return d.Send(context.Background(), "hello")
	}

	first, err := send("dev")
	require.NoError(t, err)
	second, err := send("dev")
	require.NoError(t, err)
	assert.Equal(t, first.MessageID+1, second.MessageID)

	_, err = send("blocked")
	assert.ErrorIs(t, err, notify.ErrDelivery)
}

func TestStub_Geolocation(t *testing.T) {
	srv := newTestStub(t)
	r := geo.NewIPAPIResolver(config.GeolocationConfig{BaseURL: srv.URL, TimeoutSeconds: 3, DefaultCountry: "IN"}, nil)

	loc := r.Resolve(context.Background(), "49.37.0.9")
	assert.Equal(t, "Pune", domain.Deref(loc.City))
	assert.Equal(t, "Maharashtra", domain.Deref(loc.Region))

	loc = r.Resolve(context.Background(), "10.0.0.1")
	assert.Nil(t, loc.City)
	assert.Equal(t, "IN", loc.Country)

	ip, _ := r.ResolveSelf(context.Background())
	assert.Equal(t, "49.37.0.1", ip)
}
