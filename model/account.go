package model

import "github.com/google/uuid"

// Account carries the per-user generation preferences the pipeline reads:
// an optional personal API key and an optional preferred model.
type Account struct {
	ID             uuid.UUID
	APIKey         string
	PreferredModel string
}
