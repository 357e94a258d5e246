package sqlite

import (
	"context"
	"fmt"

	"github.com/erazemk/recyclehub/internal/auth"
)

// JWTSecret returns the stored signing key, creating it on first use.
// INSERT OR IGNORE followed by a re-read avoids a race on concurrent startup.
func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := auth.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = s.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return secret, nil
}
