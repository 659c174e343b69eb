package models

// AvailabilityStatus is the user's current willingness to meet up.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityMaybe     AvailabilityStatus = "maybe"
	AvailabilityBusy      AvailabilityStatus = "busy"
)

// Valid reports whether s is one of the known statuses.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityMaybe, AvailabilityBusy:
		return true
	}
	return false
}

// Next rotates available -> maybe -> busy -> available.
func (s AvailabilityStatus) Next() AvailabilityStatus {
	switch s {
	case AvailabilityAvailable:
		return AvailabilityMaybe
	case AvailabilityMaybe:
		return AvailabilityBusy
	default:
		return AvailabilityAvailable
	}
}
