package models

import "time"

// Principal is an identity that can sign requests: a group admin, a member,
// or the operator running the payout scheduler.
//
// Address is the public identifier used everywhere in group records.
// Members are referenced by address only, so a principal can exist without
// belonging to any group.
type Principal struct {
	// Address is the unique identifier of the principal.
	Address string

	// PasswordHash is the bcrypt hash of the principal's credential.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the principal registered.
	CreatedAt int64
}

// NewPrincipal creates a principal with the given address and hashed credential.
func NewPrincipal(address, passwordHash string) *Principal {
	return &Principal{
		Address:      address,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
