package models

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a registered account that can join pools.
type Member struct {
	// ID is the unique identifier for the member (UUID format). Immutable.
	ID string

	// FirstName and LastName are the member's display name parts.
	FirstName string
	LastName  string

	// Email is the member's email address (unique). Used for login and invites.
	Email string

	// PasswordHash is the bcrypt hash of the member's password.
	PasswordHash string

	// Bio is free-form profile text.
	Bio string

	// PaymentHandle is where other members send money when settling up
	// (e.g. a Venmo or PayPal handle).
	PaymentHandle string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewMember creates a member with a fresh ID and timestamps.
func NewMember(email, firstName, lastName, passwordHash string) *Member {
	now := time.Now().Unix()
	return &Member{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DisplayName returns "First Last", falling back to the email.
func (m *Member) DisplayName() string {
	switch {
	case m.FirstName != "" && m.LastName != "":
		return m.FirstName + " " + m.LastName
	case m.FirstName != "":
		return m.FirstName
	default:
		return m.Email
	}
}
