package cache

// Well-known cache keys. Everything listed here is wiped together on
// sign-out. KeyUser must be cleared last: a crash mid-signout then presents
// as "authenticated with missing profile", which resolves as needs-setup,
// never as a stale authenticated-complete state.
const (
	KeyUser             = "user"
	KeyUserProfile      = "userProfile"
	KeyUserContacts     = "userContacts"
	KeyUserBestFriends  = "userBestFriends"
	KeyUserAvailability = "userAvailabilityStatus"
)

// SignOutKeys returns every key cleared on sign-out, ordered so the
// identity key comes last.
func SignOutKeys() []string {
	return []string{KeyUserProfile, KeyUserContacts, KeyUserBestFriends, KeyUserAvailability, KeyUser}
}
