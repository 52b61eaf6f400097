package collector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/tracking"
)

type fakeLocator struct {
	ip    string
	loc   domain.Location
	calls int
}

func (f *fakeLocator) ResolveSelf(context.Context) (string, domain.Location) {
	f.calls++
	return f.ip, f.loc
}

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"

func newService(t *testing.T, status int, body string, got *domain.SubmissionRequest, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var form = Form{Name: " Asha ", Email: "asha@example.com", Phone: "+919800000000", Company: "Acme"}

func TestSubmit_WithConsent(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusOK, `{"success":true,"message":"Telegram notification sent successfully","message_id":7,"enhanced_data":{"name":"A","email":"a@x.com","device_type":"mobile","country":"IN","city":"Pune"}}`, &got, &calls)

	loc := &fakeLocator{ip: "49.37.0.1", loc: domain.Location{City: domain.StringPtr("Pune"), Country: "IN"}}
	c, err := New(config.CollectorConfig{Endpoint: srv.URL, TimeoutSeconds: 5},
		WithLocator(loc), WithConsent(tracking.StaticConsent(true)), WithUserAgent(iphoneUA))
	require.NoError(t, err)

	resp, err := c.Submit(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.MessageID)
	require.NotNil(t, resp.EnhancedData)
	assert.Equal(t, "Pune", domain.Deref(resp.EnhancedData.City))
	assert.Equal(t, "a@x.com", resp.EnhancedData.Email)

	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "mobile", got.DeviceType)
	assert.Equal(t, iphoneUA, got.UserAgent)
	assert.Equal(t, "49.37.0.1", got.IPAddress)
	assert.Equal(t, "Pune", got.City)
	assert.Empty(t, got.Region)
	assert.Equal(t, "IN", got.Country)
}

func TestSubmit_WithoutConsentSkipsLocation(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusOK, `{"success":true,"message_id":8}`, &got, &calls)

	loc := &fakeLocator{ip: "49.37.0.1"}
	c, err := New(config.CollectorConfig{Endpoint: srv.URL, TimeoutSeconds: 5},
		WithLocator(loc), WithConsent(tracking.StaticConsent(false)))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Zero(t, loc.calls)
	assert.Empty(t, got.IPAddress)
	assert.NotEmpty(t, got.DeviceType)
}

func TestNew_NoRecordedConsentSkipsLocation(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusOK, `{"success":true,"message_id":10}`, &got, &calls)

	loc := &fakeLocator{ip: "49.37.0.1"}
	c, err := New(config.CollectorConfig{
		Endpoint:       srv.URL,
		TimeoutSeconds: 5,
		ConsentFile:    filepath.Join(t.TempDir(), "never-written.json"),
	}, WithLocator(loc))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Zero(t, loc.calls)
	assert.Empty(t, got.IPAddress)
}

func TestSubmit_LocationFailureIsBestEffort(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusOK, `{"success":true,"message_id":9}`, &got, &calls)

	loc := &fakeLocator{ip: "", loc: domain.UnknownLocation()}
	c, err := New(config.CollectorConfig{Endpoint: srv.URL, TimeoutSeconds: 5},
		WithLocator(loc), WithConsent(tracking.StaticConsent(true)))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, 1, loc.calls)
	assert.Empty(t, got.IPAddress)
	assert.Empty(t, got.Country)
}

func TestSubmit_Rejected(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusInternalServerError,
		`{"error":"Failed to send Telegram notification","details":"Telegram notification failed: 403 - blocked"}`, &got, &calls)

	c, err := New(config.CollectorConfig{Endpoint: srv.URL, TimeoutSeconds: 5},
		WithConsent(tracking.StaticConsent(false)))
	require.NoError(t, err)

	resp, err := c.Submit(context.Background(), form)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to send Telegram notification", resp.Error)
	assert.Equal(t, 1, calls, "single attempt")
}

func TestSubmit_ValidatesBeforeSending(t *testing.T) {
	var got domain.SubmissionRequest
	var calls int
	srv := newService(t, http.StatusOK, `{}`, &got, &calls)

	c, err := New(config.CollectorConfig{Endpoint: srv.URL, TimeoutSeconds: 5},
		WithConsent(tracking.StaticConsent(false)))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), Form{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Zero(t, calls)
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(config.CollectorConfig{})
	assert.Error(t, err)
}
