package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ewintr.nl/tubemap/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresMindMapRepository struct {
	postgres *Postgres
}

func NewPostgresMindMapRepository(postgres *Postgres) *PostgresMindMapRepository {
	return &PostgresMindMapRepository{postgres: postgres}
}

func (r *PostgresMindMapRepository) Save(mindMap *model.MindMap) error {
	var metadata []byte
	if mindMap.VideoMetadata != nil {
		var err error
		if metadata, err = json.Marshal(mindMap.VideoMetadata); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	_, err := r.postgres.db.Exec(`
INSERT INTO mindmap
(id, user_id, status, youtube_url, youtube_video_id, video_title, author_name, author_url, thumbnail_url,
 video_metadata, transcript, markmap, summary, takeaways, error_kind, error_message, is_public, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (id) DO UPDATE SET
status = EXCLUDED.status,
youtube_url = EXCLUDED.youtube_url,
youtube_video_id = EXCLUDED.youtube_video_id,
video_title = EXCLUDED.video_title,
author_name = EXCLUDED.author_name,
author_url = EXCLUDED.author_url,
thumbnail_url = EXCLUDED.thumbnail_url,
video_metadata = EXCLUDED.video_metadata,
transcript = EXCLUDED.transcript,
markmap = EXCLUDED.markmap,
summary = EXCLUDED.summary,
takeaways = EXCLUDED.takeaways,
error_kind = EXCLUDED.error_kind,
error_message = EXCLUDED.error_message,
is_public = EXCLUDED.is_public,
updated_at = EXCLUDED.updated_at
`, mindMap.ID, mindMap.UserID, string(mindMap.Status), mindMap.YoutubeURL, string(mindMap.YoutubeVideoID),
		mindMap.VideoTitle, mindMap.AuthorName, mindMap.AuthorURL, mindMap.ThumbnailURL,
		metadata, mindMap.Transcript, mindMap.Markmap, mindMap.Summary, pq.Array(mindMap.Takeaways),
		string(mindMap.ErrorKind), mindMap.ErrorMessage, mindMap.Public, mindMap.CreatedAt, mindMap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return nil
}

const mindMapColumns = `id, user_id, status, youtube_url, youtube_video_id, video_title, author_name, author_url,
thumbnail_url, video_metadata, transcript, markmap, summary, takeaways, error_kind, error_message, is_public,
created_at, updated_at`

func (r *PostgresMindMapRepository) Find(id uuid.UUID) (*model.MindMap, error) {
	row := r.postgres.db.QueryRow(fmt.Sprintf(`SELECT %s FROM mindmap WHERE id = $1`, mindMapColumns), id)
	mindMap, err := scanMindMap(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return mindMap, nil
}

func (r *PostgresMindMapRepository) FindByUser(userID uuid.UUID) ([]*model.MindMap, error) {
	return r.findAll(fmt.Sprintf(`SELECT %s FROM mindmap WHERE user_id = $1 ORDER BY created_at DESC`, mindMapColumns), userID)
}

func (r *PostgresMindMapRepository) FindPublic() ([]*model.MindMap, error) {
	return r.findAll(fmt.Sprintf(`SELECT %s FROM mindmap WHERE is_public ORDER BY created_at DESC`, mindMapColumns))
}

func (r *PostgresMindMapRepository) findAll(query string, args ...any) ([]*model.MindMap, error) {
	rows, err := r.postgres.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	mindMaps := []*model.MindMap{}
	for rows.Next() {
		mindMap, err := scanMindMap(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		mindMaps = append(mindMaps, mindMap)
	}

	return mindMaps, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMindMap(row scannable) (*model.MindMap, error) {
	var (
		mindMap   model.MindMap
		status    string
		videoID   string
		kind      string
		metadata  []byte
		takeaways []string
	)
	if err := row.Scan(&mindMap.ID, &mindMap.UserID, &status, &mindMap.YoutubeURL, &videoID,
		&mindMap.VideoTitle, &mindMap.AuthorName, &mindMap.AuthorURL, &mindMap.ThumbnailURL,
		&metadata, &mindMap.Transcript, &mindMap.Markmap, &mindMap.Summary, pq.Array(&takeaways),
		&kind, &mindMap.ErrorMessage, &mindMap.Public, &mindMap.CreatedAt, &mindMap.UpdatedAt); err != nil {
		return nil, err
	}

	mindMap.Status = model.Status(status)
	mindMap.YoutubeVideoID = model.YoutubeVideoID(videoID)
	mindMap.ErrorKind = model.FailureKind(kind)
	mindMap.Takeaways = takeaways
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &mindMap.VideoMetadata); err != nil {
			return nil, err
		}
	}

	return &mindMap, nil
}
