package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/xoulomon/stellarsave/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid address or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAddressTaken       = errors.New("address already registered")
	ErrInvalidAddress     = errors.New("address must be non-empty and contain no whitespace")
)

// PrincipalStorage persists registered principals.
type PrincipalStorage interface {
	CreatePrincipal(ctx context.Context, principal *models.Principal) error
	GetPrincipal(ctx context.Context, address string) (*models.Principal, error)
}

// PasswordAuthenticator authenticates principals with bcrypt password hashes.
type PasswordAuthenticator struct {
	storage  PrincipalStorage
	reserved map[string]bool
}

// NewPasswordAuthenticator creates a password authenticator. Reserved
// addresses (the custody account, the operator) can never be registered.
func NewPasswordAuthenticator(storage PrincipalStorage, reserved ...string) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage:  storage,
		reserved: make(map[string]bool, len(reserved)),
	}
	for _, r := range reserved {
		a.reserved[r] = true
	}
	return a
}

// ValidateCredential checks the password length.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// ValidateAddress checks the shape of a principal address.
func ValidateAddress(address string) error {
	if address == "" || strings.ContainsFunc(address, unicode.IsSpace) {
		return ErrInvalidAddress
	}
	return nil
}

// Register stores a new principal with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, address, credential string) (*models.Principal, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	if a.reserved[address] {
		return nil, ErrAddressTaken
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetPrincipal(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}
	if existing != nil {
		return nil, ErrAddressTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	principal := models.NewPrincipal(address, string(hashed))
	if err := a.storage.CreatePrincipal(ctx, principal); err != nil {
		return nil, fmt.Errorf("failed to create principal: %w", err)
	}

	return principal, nil
}

// Authenticate checks the password of address.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, address, credential string) (*models.Principal, error) {
	principal, err := a.storage.GetPrincipal(ctx, address)
	if err != nil || principal == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return principal, nil
}
