// Package models defines the client-side domain types: the authenticated
// identity, the durable profile record, contacts, and availability status.
package models

// Identity is the in-memory record of the authenticated user and the single
// source of truth for "is this app authenticated and fully onboarded".
// It is owned by session.Store; screens read snapshots and mutate only
// through the sync orchestrator.
type Identity struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	NeedsProfileSetup bool   `json:"needsProfileSetup"`
	ContactsLoaded    bool   `json:"contactsLoaded"`
}

// AuthResult is the identity tuple handed back by the external OAuth
// redirect flow. The client never sees tokens or credentials, only this.
type AuthResult struct {
	UserID string
	Email  string
	Name   string
}
