package model

import "time"

// User is a registered account. PasswordHash never leaves the service layer;
// it has no JSON representation.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	DateOfBirth  *string   `json:"dob"` // YYYY-MM-DD
	Address      *string   `json:"address"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PrivateDetails are the profile fields only the account owner may see.
type PrivateDetails struct {
	DateOfBirth *string `json:"dob"`
	Address     *string `json:"address"`
}

// Profile is the projection of a User returned to callers. A nil
// PrivateDetails drops dob and address from the JSON entirely.
type Profile struct {
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	*PrivateDetails
}

// ProfileUpdate carries the four owner-editable fields.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Address     string
}
