package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PostgresAccountRepository struct {
	postgres *Postgres
}

func NewPostgresAccountRepository(postgres *Postgres) *PostgresAccountRepository {
	return &PostgresAccountRepository{postgres: postgres}
}

// GenerationPreferences returns the user's personal API key and preferred
// model. An unknown user simply has no preferences.
func (r *PostgresAccountRepository) GenerationPreferences(userID uuid.UUID) (string, string, error) {
	row := r.postgres.db.QueryRow(`SELECT api_key, preferred_model FROM account WHERE id = $1`, userID)

	var apiKey, preferredModel string
	switch err := row.Scan(&apiKey, &preferredModel); {
	case errors.Is(err, sql.ErrNoRows):
		return "", "", nil
	case err != nil:
		return "", "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return apiKey, preferredModel, nil
}
