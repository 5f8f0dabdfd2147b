package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xoulomon/stellarsave/internal/models"
)

// CreatePrincipal inserts a new principal into the database.
func (s *SQLiteStore) CreatePrincipal(ctx context.Context, principal *models.Principal) error {
	query := `
		INSERT INTO principals (address, password_hash, created_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		principal.Address,
		principal.PasswordHash,
		principal.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}

	return nil
}

// GetPrincipal retrieves a principal by address.
// Returns nil and no error if the principal does not exist.
func (s *SQLiteStore) GetPrincipal(ctx context.Context, address string) (*models.Principal, error) {
	query := `
		SELECT address, password_hash, created_at
		FROM principals
		WHERE address = ?
	`

	principal := &models.Principal{}
	err := s.db.QueryRowContext(ctx, query, address).Scan(
		&principal.Address,
		&principal.PasswordHash,
		&principal.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Principal not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	return principal, nil
}
