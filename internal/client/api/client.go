// Package api talks to the remote backend. It exposes only what the
// reconciliation engine needs: profile fetch (with a fallback endpoint),
// profile push, and a liveness probe. Implementations classify failures
// instead of returning transport errors, so callers never see a raw error
// for a flaky network.
package api

import (
	"context"

	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/netx"
)

type Client interface {
	// FetchProfile queries the primary profile endpoint. A NotFound outcome
	// can mean either "no server record" or "endpoint not deployed"; callers
	// fall back to FetchProfileAlt in that case.
	FetchProfile(ctx context.Context, userID string) (*models.ProfileRecord, netx.Outcome)

	// FetchProfileAlt queries the alternate profile endpoint with the same
	// contract as FetchProfile.
	FetchProfileAlt(ctx context.Context, userID string) (*models.ProfileRecord, netx.Outcome)

	// PushProfile saves the profile on the backend. NotFound means the save
	// endpoint is not deployed yet; callers treat the local copy as
	// authoritative then.
	PushProfile(ctx context.Context, rec *models.ProfileRecord, email string) netx.Outcome

	// Ping checks server liveness on a short budget.
	Ping(ctx context.Context) error
}
