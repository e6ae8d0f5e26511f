package storage

import (
	"context"
	"errors"

	"ewintr.nl/tubemap/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type MindMapRepository interface {
	Save(mindMap *model.MindMap) error
	Find(id uuid.UUID) (*model.MindMap, error)
	FindByUser(userID uuid.UUID) ([]*model.MindMap, error)
	FindPublic() ([]*model.MindMap, error)
}

// AccountRepository exposes the per-user generation preferences. An account
// without preferences yields empty strings, not an error.
type AccountRepository interface {
	GenerationPreferences(userID uuid.UUID) (apiKey string, preferredModel string, err error)
}

type VectorRepository interface {
	Save(ctx context.Context, mindMap *model.MindMap) error
}
