// Package services contains the application services of the client: the
// profile completion resolver and the sync orchestrator. Between them they
// decide whether the user is authenticated, whether onboarding is complete,
// and how local and remote truth reconcile when the backend is slow, missing
// endpoints, or down.
package services

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/coffyapp/coffy-client/internal/client/api"
	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/client/repositories/cache"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/logging"
	"github.com/coffyapp/coffy-client/internal/netx"
)

// Bias selects the default outcome when neither the backend nor the local
// cache answers conclusively. A fresh login biases toward onboarding (a
// brand-new user most likely has no profile anywhere); restoring an existing
// session biases toward not disrupting a user who already finished setup.
// The two flows genuinely want opposite defaults, so the caller must always
// say which one it is — the resolver never guesses.
type Bias int

const (
	BiasFreshLogin Bias = iota
	BiasRestore
)

// Resolver answers "does this user still need onboarding?" from the best
// available source, in order: primary endpoint, alternate endpoint on a 404,
// local cache, then the caller-supplied bias. Its contract is total: for any
// non-empty user id it returns a boolean, never a transport error.
type Resolver struct {
	client api.Client
	repo   cache.Repository
	log    logging.Logger
	group  singleflight.Group
}

func profileCheckKey(userID string) string { return "profile-check:" + userID }

func NewResolver(client api.Client, repo cache.Repository, log logging.Logger) *Resolver {
	return &Resolver{client: client, repo: repo, log: log}
}

// Resolve reports whether the user needs profile setup. The first conclusive
// source wins; a timeout, connection failure, server error or malformed body
// is never conclusive and falls through to the next source.
func (r *Resolver) Resolve(ctx context.Context, userID string, bias Bias) (bool, error) {
	if userID == "" {
		return true, common.ErrMissingUserID
	}

	rec, outcome := r.RemoteRecord(ctx, userID)
	switch outcome {
	case netx.OutcomeOK:
		return rec.NeedsSetup(), nil
	case netx.OutcomeNotFound:
		// No record on either endpoint: deployed-but-empty backend, or
		// feature not shipped yet. Local knowledge decides.
	default:
		r.log.Warn(ctx, "remote profile check inconclusive", "user_id", userID, "outcome", outcome.String())
	}

	if local := r.localRecord(ctx); local != nil {
		return local.NeedsSetup(), nil
	}

	// Nothing conclusive anywhere. Fresh logins get onboarding; restored
	// sessions are left alone.
	return bias == BiasFreshLogin, nil
}

// remoteFetch is the one value type ever returned under the profile-check
// singleflight key; every joiner type-asserts the same thing.
type remoteFetch struct {
	rec     *models.ProfileRecord
	outcome netx.Outcome
}

// RemoteRecord fetches the freshest server-side profile, trying the
// alternate endpoint when the primary returns 404. The outcome is OK only
// together with a parsed record. Overlapping fetches for the same user —
// a session restore racing a login or a manual sync — share one network
// round trip; each caller still gets its own record copy.
func (r *Resolver) RemoteRecord(ctx context.Context, userID string) (*models.ProfileRecord, netx.Outcome) {
	v, _, _ := r.group.Do(profileCheckKey(userID), func() (any, error) {
		rec, outcome := r.client.FetchProfile(ctx, userID)
		if outcome == netx.OutcomeNotFound {
			rec, outcome = r.client.FetchProfileAlt(ctx, userID)
		}
		return remoteFetch{rec: rec, outcome: outcome}, nil
	})
	f := v.(remoteFetch)
	if f.rec == nil {
		return nil, f.outcome
	}
	rec := *f.rec
	return &rec, f.outcome
}

// localRecord reads the cached ProfileRecord, nil when absent or unreadable.
// Records written before the contacts_loaded field existed are upgraded from
// a non-empty cached contact list.
func (r *Resolver) localRecord(ctx context.Context) *models.ProfileRecord {
	data, err := r.repo.Get(ctx, cache.KeyUserProfile)
	if err != nil || data == nil {
		return nil
	}

	var rec models.ProfileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.log.Warn(ctx, "unreadable local profile record")
		return nil
	}

	if !rec.ContactsLoaded {
		if cdata, err := r.repo.Get(ctx, cache.KeyUserContacts); err == nil && cdata != nil {
			var contacts []models.Contact
			if json.Unmarshal(cdata, &contacts) == nil && len(contacts) > 0 {
				rec.ContactsLoaded = true
			}
		}
	}
	return &rec
}
