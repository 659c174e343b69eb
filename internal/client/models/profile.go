package models

// ProfileRecord holds the durable onboarding facts for a user. Copies may
// exist locally, remotely, both, or neither; the copies are not required to
// be byte-identical, only to agree on HasProfile and ContactsLoaded.
type ProfileRecord struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	ContactsLoaded bool   `json:"contacts_loaded"`

	// PendingPush is set when the record was saved locally while the
	// backend was unreachable and still has to be pushed.
	PendingPush bool `json:"pending_push,omitempty"`
}

// HasProfile reports whether the essential profile fields are filled in.
func (p *ProfileRecord) HasProfile() bool {
	return p.Name != "" && p.PhoneNumber != ""
}

// NeedsSetup derives the onboarding flag: a user is done once both the
// profile fields and the contact import are in place.
func (p *ProfileRecord) NeedsSetup() bool {
	return !(p.HasProfile() && p.ContactsLoaded)
}
