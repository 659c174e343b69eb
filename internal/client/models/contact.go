package models

import "github.com/google/uuid"

// Contact is a single imported device contact.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// NewContact creates a contact with a fresh id.
func NewContact(name, phoneNumber string) Contact {
	return Contact{ID: uuid.NewString(), Name: name, PhoneNumber: phoneNumber}
}
