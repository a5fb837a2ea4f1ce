package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sigcast/internal/dispatch"
	"sigcast/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	channels map[string]*models.Channel
	order    []string
	admins   map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		channels: make(map[string]*models.Channel),
		admins:   make(map[string][]string),
	}
}

func (f *fakeStore) EnsureChannel(ctx context.Context, channel *models.Channel) error {
	f.channels[channel.PhoneNumber] = channel
	f.order = append(f.order, channel.PhoneNumber)
	return nil
}

func (f *fakeStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	channels := make([]models.Channel, 0, len(f.order))
	for _, number := range f.order {
		channels = append(channels, *f.channels[number])
	}
	return channels, nil
}

func (f *fakeStore) AddAdmin(ctx context.Context, channel, number string) error {
	f.admins[channel] = append(f.admins[channel], number)
	return nil
}

func (f *fakeStore) CountAdmins(ctx context.Context, channel string) (int, error) {
	return len(f.admins[channel]), nil
}

func (f *fakeStore) CountSubscribers(ctx context.Context, channel string) (int, error) {
	return 0, nil
}

type fakeQueue struct{ length int }

func (f *fakeQueue) Len() int { return f.length }

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()

	registry, err := dispatch.NewRegistry([]models.ChannelConfig{
		{PhoneNumber: "+15550001111", Name: "alerts"},
	})
	require.NoError(t, err)

	cfg := &models.Config{}
	cfg.Server.Port = 0

	return NewServer(cfg, registry, store, &fakeQueue{length: 3}, logrus.New())
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"channels":1`)
	assert.Contains(t, rec.Body.String(), `"pendingResends":3`)
}

func TestListChannelsEndpoint(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.EnsureChannel(context.Background(), &models.Channel{PhoneNumber: "+15550001111", Name: "alerts"}))
	require.NoError(t, store.EnsureChannel(context.Background(), &models.Channel{PhoneNumber: "+15550002222", Name: "updates"}))
	require.NoError(t, store.AddAdmin(context.Background(), "+15550001111", "+15551234567"))
	server := newTestServer(t, store)

	req := httptest.NewRequest(http.MethodGet, "/channels", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phoneNumber":"+15550001111"`)
	assert.Contains(t, rec.Body.String(), `"admins":1`)
	// Provisioned but unconfigured channels appear with polling disabled
	assert.Contains(t, rec.Body.String(), `"phoneNumber":"+15550002222"`)
	assert.Contains(t, rec.Body.String(), `"polling":false`)
}

func TestCreateChannelEndpoint(t *testing.T) {
	store := newFakeStore()
	server := newTestServer(t, store)

	body := `{"phoneNumber": "+15550002222", "name": "updates", "admins": ["+15551234567"]}`
	req := httptest.NewRequest(http.MethodPost, "/channels", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, store.channels, "+15550002222")
	assert.Equal(t, "updates", store.channels["+15550002222"].Name)
	assert.Equal(t, []string{"+15551234567"}, store.admins["+15550002222"])
}

func TestCreateChannelRejectsBadNumber(t *testing.T) {
	server := newTestServer(t, newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/channels", strings.NewReader(`{"phoneNumber": "bogus", "name": "x"}`))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateChannelRejectsBadAdmin(t *testing.T) {
	server := newTestServer(t, newFakeStore())

	body := `{"phoneNumber": "+15550002222", "name": "updates", "admins": ["nope"]}`
	req := httptest.NewRequest(http.MethodPost, "/channels", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateChannelRejectsInvalidJSON(t *testing.T) {
	server := newTestServer(t, newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/channels", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
