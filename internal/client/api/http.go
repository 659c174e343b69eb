package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/netx"
)

// HTTPClient is the production Client over the backend's JSON API.
type HTTPClient struct {
	baseURL string
	client  *netx.Client

	// requestTimeout budgets login and profile saves; checkTimeout budgets
	// passive background checks, which must give up quickly.
	requestTimeout time.Duration
	checkTimeout   time.Duration
}

func NewHTTPClient(baseURL string, client *netx.Client, requestTimeout, checkTimeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:        baseURL,
		client:         client,
		requestTimeout: requestTimeout,
		checkTimeout:   checkTimeout,
	}
}

// profilePayload mirrors the backend's profile body.
type profilePayload struct {
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	ContactsLoaded bool   `json:"contacts_loaded"`
}

// updateProfileRequest mirrors POST /auth/users/update-profile.
type updateProfileRequest struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	ContactsLoaded bool   `json:"contacts_loaded"`
}

func (c *HTTPClient) fetch(ctx context.Context, url, userID string) (*models.ProfileRecord, netx.Outcome) {
	_, body, outcome := c.client.Do(ctx, http.MethodGet, url, nil, c.requestTimeout)
	if outcome != netx.OutcomeOK {
		return nil, outcome
	}

	var p profilePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, netx.OutcomeMalformed
	}
	return &models.ProfileRecord{
		UserID:         userID,
		Name:           p.Name,
		PhoneNumber:    p.PhoneNumber,
		ContactsLoaded: p.ContactsLoaded,
	}, netx.OutcomeOK
}

func (c *HTTPClient) FetchProfile(ctx context.Context, userID string) (*models.ProfileRecord, netx.Outcome) {
	return c.fetch(ctx, fmt.Sprintf("%s/auth/users/profile/%s", c.baseURL, userID), userID)
}

func (c *HTTPClient) FetchProfileAlt(ctx context.Context, userID string) (*models.ProfileRecord, netx.Outcome) {
	return c.fetch(ctx, fmt.Sprintf("%s/auth/user/%s", c.baseURL, userID), userID)
}

func (c *HTTPClient) PushProfile(ctx context.Context, rec *models.ProfileRecord, email string) netx.Outcome {
	body, err := json.Marshal(updateProfileRequest{
		UserID:         rec.UserID,
		Name:           rec.Name,
		Email:          email,
		PhoneNumber:    rec.PhoneNumber,
		ContactsLoaded: rec.ContactsLoaded,
	})
	if err != nil {
		return netx.OutcomeMalformed
	}

	url := fmt.Sprintf("%s/auth/users/update-profile", c.baseURL)
	_, _, outcome := c.client.Do(ctx, http.MethodPost, url, body, c.requestTimeout)
	return outcome
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, _, outcome := c.client.Do(ctx, http.MethodGet, c.baseURL+"/health", nil, c.checkTimeout)
	if outcome != netx.OutcomeOK {
		return fmt.Errorf("%w: %s", common.ErrServerUnavailable, outcome)
	}
	return nil
}
