package storage

var pgMigration = []string{
	`CREATE TYPE mindmap_status AS ENUM ('created', 'metadata_fetched', 'transcript_resolved', 'ready', 'failed')`,
	`CREATE TABLE account (
id uuid PRIMARY KEY,
api_key VARCHAR(255) NOT NULL DEFAULT '',
preferred_model VARCHAR(255) NOT NULL DEFAULT ''
)`,
	`CREATE TABLE mindmap (
id uuid PRIMARY KEY,
user_id uuid NOT NULL REFERENCES account(id),
status mindmap_status NOT NULL,
youtube_url VARCHAR(255) NOT NULL,
youtube_video_id VARCHAR(20) NOT NULL,
video_title VARCHAR(255) NOT NULL DEFAULT '',
author_name VARCHAR(255) NOT NULL DEFAULT '',
author_url VARCHAR(255) NOT NULL DEFAULT '',
thumbnail_url VARCHAR(255) NOT NULL DEFAULT '',
video_metadata JSONB,
transcript TEXT NOT NULL DEFAULT '',
markmap TEXT NOT NULL DEFAULT '',
summary TEXT NOT NULL DEFAULT '',
takeaways TEXT[] NOT NULL DEFAULT '{}',
error_kind VARCHAR(32) NOT NULL DEFAULT '',
error_message TEXT NOT NULL DEFAULT '',
is_public BOOLEAN NOT NULL DEFAULT FALSE,
created_at TIMESTAMP NOT NULL,
updated_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX mindmap_user_id_idx ON mindmap (user_id)`,
	`CREATE INDEX mindmap_is_public_idx ON mindmap (is_public) WHERE is_public`,
}
