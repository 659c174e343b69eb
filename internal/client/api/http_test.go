package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/logging"
	"github.com/coffyapp/coffy-client/internal/netx"
)

func newTestClient(t *testing.T, handler http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	nc := netx.NewClient(logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewHTTPClient(srv.URL, nc, time.Second, time.Second), srv
}

func TestFetchProfile_OK(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/users/profile/u1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":            "Ann",
			"phone_number":    "+15551234567",
			"contacts_loaded": true,
		})
	}))

	rec, outcome := c.FetchProfile(context.Background(), "u1")
	require.Equal(t, netx.OutcomeOK, outcome)
	require.Equal(t, "u1", rec.UserID)
	require.Equal(t, "Ann", rec.Name)
	require.Equal(t, "+15551234567", rec.PhoneNumber)
	require.True(t, rec.ContactsLoaded)
	require.False(t, rec.NeedsSetup())
}

func TestFetchProfile_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	rec, outcome := c.FetchProfile(context.Background(), "u1")
	require.Equal(t, netx.OutcomeNotFound, outcome)
	require.Nil(t, rec)
}

func TestFetchProfile_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": `))
	}))

	rec, outcome := c.FetchProfile(context.Background(), "u1")
	require.Equal(t, netx.OutcomeMalformed, outcome)
	require.Nil(t, rec)
}

func TestFetchProfileAlt_UsesAlternatePath(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/user/u1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "Ann", "phone_number": "1", "contacts_loaded": false})
	}))

	rec, outcome := c.FetchProfileAlt(context.Background(), "u1")
	require.Equal(t, netx.OutcomeOK, outcome)
	require.True(t, rec.NeedsSetup(), "contacts not loaded yet")
}

func TestPushProfile_SendsRequestBody(t *testing.T) {
	var got updateProfileRequest
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/users/update-profile", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	rec := &models.ProfileRecord{UserID: "u1", Name: "Ann", PhoneNumber: "+15551234567", ContactsLoaded: true}
	outcome := c.PushProfile(context.Background(), rec, "ann@example.com")

	require.Equal(t, netx.OutcomeOK, outcome)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "ann@example.com", got.Email)
	require.True(t, got.ContactsLoaded)
}

func TestPushProfile_NotDeployed(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	rec := &models.ProfileRecord{UserID: "u1", Name: "Ann", PhoneNumber: "1"}
	require.Equal(t, netx.OutcomeNotFound, c.PushProfile(context.Background(), rec, ""))
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
	}))
	require.NoError(t, c.Ping(context.Background()))

	down, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	err := down.Ping(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrServerUnavailable))
}
