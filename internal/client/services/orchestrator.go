package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/coffyapp/coffy-client/internal/client/api"
	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/client/repositories/cache"
	"github.com/coffyapp/coffy-client/internal/client/session"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/logging"
	"github.com/coffyapp/coffy-client/internal/netx"
)

// Orchestrator is the narrow mutation surface the rest of the app uses:
// login, onboarding completion, explicit re-sync, contact/preference saves
// and sign-out. Overlapping pushes and contact saves are coalesced through a
// singleflight group; overlapping profile checks coalesce inside the
// resolver, so an app-start restore racing a manual retry issues one network
// round trip and both callers see the same outcome.
type Orchestrator struct {
	store    *session.Store
	resolver *Resolver
	client   api.Client
	repo     cache.Repository
	log      logging.Logger
	group    singleflight.Group
}

func NewOrchestrator(store *session.Store, resolver *Resolver, client api.Client, repo cache.Repository, log logging.Logger) *Orchestrator {
	return &Orchestrator{store: store, resolver: resolver, client: client, repo: repo, log: log}
}

// Concern keys. Keyed per user so unrelated operations never serialize
// against each other. The profile-check key lives in the resolver, which
// owns remote profile fetches.
func profilePushKey(userID string) string  { return "profile-push:" + userID }
func contactsSyncKey(userID string) string { return "contacts-sync:" + userID }

// Login builds an Identity from the external auth flow's tuple, decides the
// onboarding flag with a fresh-login bias, and commits it. A dead backend
// never blocks login; it only decides whether onboarding is shown.
func (o *Orchestrator) Login(ctx context.Context, auth models.AuthResult) (models.Identity, error) {
	if auth.UserID == "" || auth.Email == "" {
		return models.Identity{}, common.ErrInvalidAuthResult
	}

	needsSetup, err := o.resolver.Resolve(ctx, auth.UserID, BiasFreshLogin)
	if err != nil {
		needsSetup = true
	}

	id := models.Identity{
		ID:                auth.UserID,
		Email:             auth.Email,
		Name:              auth.Name,
		NeedsProfileSetup: needsSetup,
	}
	if err := o.store.Login(ctx, id); err != nil {
		return models.Identity{}, err
	}
	return id, nil
}

// CompleteOnboarding saves the profile and contacts. The local write is
// unconditional and must succeed fully offline; the remote push is best
// effort on a bounded budget. The user has done their part either way, so
// needsProfileSetup goes false locally even when the push fails — the record
// is then marked for a later push.
func (o *Orchestrator) CompleteOnboarding(ctx context.Context, profile models.ProfileRecord, contacts []models.Contact) error {
	snap, ok := o.store.Snapshot()
	if !ok {
		return common.ErrNotAuthenticated
	}

	profile.UserID = snap.ID
	if len(contacts) > 0 {
		profile.ContactsLoaded = true
	}
	// Re-running onboarding without a contact list must not un-load contacts
	// that an earlier run already imported.
	if local := o.resolver.localRecord(ctx); local != nil && local.ContactsLoaded {
		profile.ContactsLoaded = true
	}

	if len(contacts) > 0 {
		data, err := json.Marshal(contacts)
		if err != nil {
			return fmt.Errorf("marshal contacts: %w", err)
		}
		if err := o.repo.Set(ctx, cache.KeyUserContacts, data); err != nil {
			return fmt.Errorf("%w: save contacts: %v", common.ErrCacheUnavailable, err)
		}
	}
	if err := o.saveProfileRecord(ctx, &profile); err != nil {
		return err
	}

	v, _, _ := o.group.Do(profilePushKey(snap.ID), func() (any, error) {
		return o.client.PushProfile(ctx, &profile, snap.Email), nil
	})
	outcome := v.(netx.Outcome)

	// OK means saved; NotFound means the save endpoint is not deployed, so
	// the local copy is authoritative. Anything else is a deferred push.
	profile.PendingPush = !outcome.Conclusive()
	if profile.PendingPush {
		o.log.Warn(ctx, "profile push deferred", "user_id", snap.ID, "outcome", outcome.String())
		if err := o.saveProfileRecord(ctx, &profile); err != nil {
			return err
		}
	}

	_, err := o.store.Update(ctx, func(id *models.Identity) {
		id.Name = profile.Name
		id.NeedsProfileSetup = false
		if profile.ContactsLoaded {
			id.ContactsLoaded = true
		}
	})
	return err
}

// SyncFromServer is the explicit pull-style re-reconciliation. It first
// flushes any deferred push, then merges the server record into local state.
// The merge may only move needsProfileSetup from true to false: pushing a
// user back into onboarding takes an explicit user action, never a
// background sync.
func (o *Orchestrator) SyncFromServer(ctx context.Context) (bool, error) {
	snap, ok := o.store.Snapshot()
	if !ok {
		return false, common.ErrNotAuthenticated
	}

	o.flushPending(ctx, snap.Email)

	rec, outcome := o.resolver.RemoteRecord(ctx, snap.ID)
	if outcome != netx.OutcomeOK {
		o.log.Info(ctx, "nothing to merge from server", "user_id", snap.ID, "outcome", outcome.String())
		return false, nil
	}
	// An incomplete server copy never regresses local state.
	if !rec.HasProfile() {
		return false, nil
	}

	// Contacts are device-local knowledge; the server lagging behind on
	// contacts_loaded must not un-load them here.
	if local := o.resolver.localRecord(ctx); local != nil && local.ContactsLoaded {
		rec.ContactsLoaded = true
	}

	if err := o.saveProfileRecord(ctx, rec); err != nil {
		return false, err
	}
	_, err := o.store.Update(ctx, func(id *models.Identity) {
		id.Name = rec.Name
		if rec.ContactsLoaded {
			id.ContactsLoaded = true
		}
		if !rec.NeedsSetup() {
			id.NeedsProfileSetup = false
		}
	})
	return err == nil, err
}

// SignOut delegates to the session store's all-or-nothing clear.
func (o *Orchestrator) SignOut(ctx context.Context) error {
	return o.store.SignOut(ctx)
}

// SaveContacts persists the imported contact list and marks the identity
// contacts-loaded. Coalesced per user against double-tap saves.
func (o *Orchestrator) SaveContacts(ctx context.Context, contacts []models.Contact) error {
	snap, ok := o.store.Snapshot()
	if !ok {
		return common.ErrNotAuthenticated
	}

	_, err, _ := o.group.Do(contactsSyncKey(snap.ID), func() (any, error) {
		data, err := json.Marshal(contacts)
		if err != nil {
			return nil, fmt.Errorf("marshal contacts: %w", err)
		}
		if err := o.repo.Set(ctx, cache.KeyUserContacts, data); err != nil {
			return nil, fmt.Errorf("%w: save contacts: %v", common.ErrCacheUnavailable, err)
		}

		if rec := o.resolver.localRecord(ctx); rec != nil {
			rec.ContactsLoaded = true
			if err := o.saveProfileRecord(ctx, rec); err != nil {
				return nil, err
			}
		}
		_, err = o.store.Update(ctx, func(id *models.Identity) {
			id.ContactsLoaded = true
		})
		return nil, err
	})
	return err
}

// SaveBestFriends persists the pinned friend ids.
func (o *Orchestrator) SaveBestFriends(ctx context.Context, ids []string) error {
	if _, ok := o.store.Snapshot(); !ok {
		return common.ErrNotAuthenticated
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal best friends: %w", err)
	}
	if err := o.repo.Set(ctx, cache.KeyUserBestFriends, data); err != nil {
		return fmt.Errorf("%w: save best friends: %v", common.ErrCacheUnavailable, err)
	}
	return nil
}

// Availability returns the persisted availability status, defaulting to
// available.
func (o *Orchestrator) Availability(ctx context.Context) (models.AvailabilityStatus, error) {
	data, err := o.repo.Get(ctx, cache.KeyUserAvailability)
	if err != nil {
		return models.AvailabilityAvailable, err
	}
	status := models.AvailabilityStatus(data)
	if !status.Valid() {
		return models.AvailabilityAvailable, nil
	}
	return status, nil
}

// CycleAvailability rotates available -> maybe -> busy and persists the
// result.
func (o *Orchestrator) CycleAvailability(ctx context.Context) (models.AvailabilityStatus, error) {
	current, err := o.Availability(ctx)
	if err != nil {
		return current, err
	}
	next := current.Next()
	if err := o.repo.Set(ctx, cache.KeyUserAvailability, []byte(next)); err != nil {
		return current, fmt.Errorf("%w: save availability: %v", common.ErrCacheUnavailable, err)
	}
	return next, nil
}

// ForceProfileSetup flips the onboarding flag back on. This is the only
// sanctioned true-ward transition and is always an explicit user action.
func (o *Orchestrator) ForceProfileSetup(ctx context.Context) error {
	_, err := o.store.Update(ctx, func(id *models.Identity) {
		id.NeedsProfileSetup = true
	})
	return err
}

func (o *Orchestrator) saveProfileRecord(ctx context.Context, rec *models.ProfileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := o.repo.Set(ctx, cache.KeyUserProfile, data); err != nil {
		return fmt.Errorf("%w: save profile: %v", common.ErrCacheUnavailable, err)
	}
	return nil
}

// flushPending re-pushes a profile record that was saved while the backend
// was unreachable. Transient failures back off and retry a few times; a 404
// still counts as done (endpoint not deployed, local copy authoritative).
func (o *Orchestrator) flushPending(ctx context.Context, email string) {
	rec := o.resolver.localRecord(ctx)
	if rec == nil || !rec.PendingPush {
		return
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		outcome := o.client.PushProfile(ctx, rec, email)
		if outcome.Conclusive() {
			return nil
		}
		return retry.RetryableError(fmt.Errorf("push profile: %s", outcome))
	})
	if err != nil {
		o.log.Warn(ctx, "deferred profile push still failing", "user_id", rec.UserID)
		return
	}

	rec.PendingPush = false
	if err := o.saveProfileRecord(ctx, rec); err != nil {
		o.log.Warn(ctx, "could not clear pending-push flag", "user_id", rec.UserID)
	}
}
